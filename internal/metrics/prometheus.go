package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/san-kum/dronesim/internal/sim"
)

var (
	flightState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dronesim_flight_state",
			Help: "Latest published flight quantities of the drone.",
		},
		[]string{"quantity"},
	)

	channelValue = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dronesim_channel_normalized",
			Help: "Latest normalized control channel values.",
		},
		[]string{"channel"},
	)
)

func init() {
	prometheus.MustRegister(flightState)
	prometheus.MustRegister(channelValue)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// GaugeObserver publishes every frame to the flight gauges.
type GaugeObserver struct{}

func (GaugeObserver) OnStep(f sim.Frame) {
	flightState.WithLabelValues("altitude").Set(f.Position.Y())
	flightState.WithLabelValues("speed").Set(f.LinearVelocity.Len())
	flightState.WithLabelValues("angular_speed").Set(f.AngularVelocity.Len())
	flightState.WithLabelValues("tilt").Set(Tilt(f))
	flightState.WithLabelValues("energy").Set(f.Energy)
	flightState.WithLabelValues("time").Set(f.T)

	n := f.Channels.Normalized
	channelValue.WithLabelValues("roll").Set(n.Roll)
	channelValue.WithLabelValues("pitch").Set(n.Pitch)
	channelValue.WithLabelValues("yaw").Set(n.Yaw)
	channelValue.WithLabelValues("throttle").Set(n.Throttle)
}

// StatsSource reports simulation anomaly counters.
type StatsSource interface {
	Stats() sim.Stats
}

// Collector exposes sim.Stats as Prometheus counters. It reads the atomic
// counters at scrape time, so it may run concurrently with the tick loop.
type Collector struct {
	source StatsSource
	descs  map[string]*prometheus.Desc
}

var statNames = []string{
	"steps", "pose_discards", "linear_clamps", "angular_clamps", "frame_clamps",
	"skipped_frames", "drag_skips", "ground_contacts", "sanitized_inputs",
}

var statHelp = map[string]string{
	"steps":            "Physics steps taken.",
	"pose_discards":    "Steps discarded because the drone state became non-finite.",
	"linear_clamps":    "Steps whose linear velocity was rescaled to the limit.",
	"angular_clamps":   "Steps whose angular velocity was rescaled to the limit.",
	"frame_clamps":     "Frame deltas clamped to the maximum frame delta.",
	"skipped_frames":   "Frames skipped for a non-positive or non-finite delta.",
	"drag_skips":       "Steps without drag because the drone was at rest.",
	"ground_contacts":  "Steps in which the drone touched the ground.",
	"sanitized_inputs": "Steps whose control values were clamped or replaced.",
}

func NewCollector(source StatsSource, labels prometheus.Labels) *Collector {
	c := &Collector{source: source, descs: make(map[string]*prometheus.Desc, len(statNames))}
	for _, name := range statNames {
		c.descs[name] = prometheus.NewDesc("dronesim_"+name+"_total", statHelp[name], nil, labels)
	}
	return c
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, name := range statNames {
		ch <- c.descs[name]
	}
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	st := c.source.Stats()
	values := map[string]uint64{
		"steps":            st.Steps,
		"pose_discards":    st.PoseDiscards,
		"linear_clamps":    st.LinearClamps,
		"angular_clamps":   st.AngularClamps,
		"frame_clamps":     st.FrameClamps,
		"skipped_frames":   st.SkippedFrames,
		"drag_skips":       st.DragSkips,
		"ground_contacts":  st.GroundContacts,
		"sanitized_inputs": st.SanitizedInputs,
	}
	for _, name := range statNames {
		ch <- prometheus.MustNewConstMetric(c.descs[name], prometheus.CounterValue, float64(values[name]))
	}
}

// Register adds a collector for source to the default registry.
func Register(source StatsSource, labels prometheus.Labels) error {
	return prometheus.Register(NewCollector(source, labels))
}
