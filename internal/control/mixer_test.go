package control_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/dronesim/internal/control"
)

var _ = Describe("Mixer", func() {
	var (
		cfg    control.Config
		device *control.Manual
		mixer  *control.Mixer
	)

	BeforeEach(func() {
		cfg = control.DefaultConfig()
		device = control.NewManual()
		var err error
		mixer, err = control.NewMixer(cfg, device)
		Expect(err).NotTo(HaveOccurred())
	})

	It("starts at idle", func() {
		ch := mixer.Channels()
		Expect(ch.Raw).To(Equal(control.Values{Roll: 1500, Pitch: 1500, Yaw: 1500, Throttle: 0}))
		Expect(ch.Normalized).To(Equal(control.Values{}))
	})

	It("rejects an invalid configuration", func() {
		cfg.RampRate = -1
		_, err := control.NewMixer(cfg, device)
		Expect(err).To(HaveOccurred())
	})

	Context("keyboard path", func() {
		It("ramps a held key by one step per tick", func() {
			device.Press("up", "w")
			for i := 1; i <= 4; i++ {
				ch := mixer.Update()
				Expect(ch.Raw.Roll).To(Equal(1500 + 25*float64(i)))
				Expect(ch.Raw.Throttle).To(Equal(25 * float64(i)))
			}
			Expect(mixer.Held("up")).To(BeTrue())
			Expect(mixer.GamepadActive()).To(BeFalse())
		})

		It("clamps at the channel bounds", func() {
			device.Press("up", "left", "w", "d")
			for i := 0; i < 500; i++ {
				mixer.Update()
			}
			ch := mixer.Channels()
			Expect(ch.Raw).To(Equal(control.Values{Roll: 3000, Pitch: 0, Yaw: 0, Throttle: 3000}))
			Expect(ch.Normalized).To(Equal(control.Values{Roll: 1, Pitch: -1, Yaw: -1, Throttle: 1}))
		})

		It("holds a channel when both keys are pressed", func() {
			device.Press("right")
			mixer.Update()
			device.Press("left")
			Expect(mixer.Update().Raw.Pitch).To(Equal(1525.0))
			Expect(mixer.Update().Raw.Pitch).To(Equal(1525.0))
		})

		It("returns to center without overshooting once released", func() {
			device.Press("up", "a")
			for i := 0; i < 10; i++ {
				mixer.Update()
			}
			device.Press("w")
			mixer.Update()
			device.ReleaseAll()

			prevRoll := mixer.Channels().Raw.Roll
			prevThrottle := mixer.Channels().Raw.Throttle
			for i := 0; i < 40; i++ {
				ch := mixer.Update()
				Expect(ch.Raw.Roll).To(BeNumerically("<=", prevRoll))
				Expect(ch.Raw.Roll).To(BeNumerically(">=", 1500))
				Expect(prevRoll - ch.Raw.Roll).To(BeNumerically("<=", cfg.RampRate))
				Expect(ch.Raw.Throttle).To(BeNumerically("<=", prevThrottle))
				Expect(ch.Raw.Throttle).To(BeNumerically(">=", 0))
				prevRoll, prevThrottle = ch.Raw.Roll, ch.Raw.Throttle
			}
			Expect(mixer.Channels().Raw.Roll).To(Equal(1500.0))
			Expect(mixer.Channels().Raw.Yaw).To(Equal(1500.0))
			Expect(mixer.Channels().Raw.Throttle).To(Equal(0.0))
		})

		It("lands exactly on center when closer than one ramp step", func() {
			mixer.SetDevice(device)
			device.ConnectGamepad([4]float64{0.01, 0, 0, -1})
			Expect(mixer.Update().Raw.Roll).To(Equal(1515.0))

			device.DisconnectGamepad()
			Expect(mixer.Update().Raw.Roll).To(Equal(1500.0))
			Expect(mixer.Update().Raw.Roll).To(Equal(1500.0))
		})

		It("ramps throttle toward a hover-neutral idle", func() {
			cfg.Throttle.Idle = 1500
			m, err := control.NewMixer(cfg, device)
			Expect(err).NotTo(HaveOccurred())
			Expect(m.Channels().Normalized.Throttle).To(Equal(0.5))

			device.Press("s")
			for i := 0; i < 4; i++ {
				m.Update()
			}
			device.ReleaseAll()
			Expect(m.Update().Raw.Throttle).To(Equal(1425.0))
		})
	})

	Context("gamepad path", func() {
		It("snaps to the gamepad values when it connects", func() {
			device.Press("up", "right", "a", "w")
			for i := 0; i < 20; i++ {
				mixer.Update()
			}
			Expect(mixer.Channels().Raw.Roll).To(Equal(2000.0))

			device.ConnectGamepad([4]float64{0, 0, 0, 0})
			ch := mixer.Update()
			Expect(mixer.GamepadActive()).To(BeTrue())
			Expect(ch.Raw).To(Equal(control.Values{Roll: 1500, Pitch: 1500, Yaw: 1500, Throttle: 1500}))
			Expect(ch.Normalized).To(Equal(control.Values{Throttle: 0.5}))
		})

		It("ignores held keys while connected", func() {
			device.ConnectGamepad([4]float64{-1, 1, 0.5, 1})
			device.Press("up", "s")
			ch := mixer.Update()
			Expect(ch.Raw).To(Equal(control.Values{Roll: 0, Pitch: 3000, Yaw: 2250, Throttle: 3000}))
		})

		It("falls back to the keyboard path from the last values on disconnect", func() {
			device.ConnectGamepad([4]float64{1, 0, 0, 0})
			mixer.Update()
			device.DisconnectGamepad()

			ch := mixer.Update()
			Expect(mixer.GamepadActive()).To(BeFalse())
			Expect(ch.Raw.Roll).To(Equal(2975.0))
			Expect(ch.Raw.Throttle).To(Equal(1475.0))
		})

		It("replaces non-finite axes with the idle value", func() {
			device.ConnectGamepad([4]float64{math.NaN(), math.Inf(-1), 0.5, math.NaN()})
			ch := mixer.Update()
			Expect(ch.Raw).To(Equal(control.Values{Roll: 1500, Pitch: 1500, Yaw: 2250, Throttle: 0}))
			for _, a := range control.Axes {
				Expect(math.IsNaN(ch.Normalized.Get(a))).To(BeFalse())
			}
		})
	})

	It("resets every channel to idle", func() {
		device.Press("up", "w")
		mixer.Update()
		mixer.Reset()
		Expect(mixer.Channels().Raw).To(Equal(control.Values{Roll: 1500, Pitch: 1500, Yaw: 1500}))
	})
})
