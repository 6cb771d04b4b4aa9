package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(buildInfo)
}

var buildInfo = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "quotesense_build_info",
		Help: "Constant 1, labeled with build version, commit, provider and active prompt version.",
	},
	[]string{"version", "commit", "provider", "prompt_version"},
)

func SetBuildInfo(version, commit, provider, promptVersion string) {
	buildInfo.WithLabelValues(version, commit, norm(provider), promptVersion).Set(1)
}
