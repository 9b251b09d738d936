package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Collectors are enqueued by each file's init and installed in one
// MustRegister call from main, so importing the package registers nothing
// by itself.
var (
	registerOnce sync.Once
	pending      []prometheus.Collector
)

func register(cs ...prometheus.Collector) {
	pending = append(pending, cs...)
}

// MustRegister installs every enqueued collector into the default
// registry. Only the first call registers; later calls are no-ops.
func MustRegister() {
	registerOnce.Do(func() {
		if len(pending) > 0 {
			prometheus.MustRegister(pending...)
		}
	})
}

func init() {
	register(
		dialogsStartedTotal,
		dialogsFinishedTotal,
		chatMessagesTotal,
		quotaDenialsTotal,
		rateLimitBlocksTotal,
		broadcastDeliveredTotal,
		broadcastFailedTotal,
	)
}

var (
	dialogsStartedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dialogs_started_total",
			Help: "Total number of dialogs started.",
		},
	)

	dialogsFinishedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dialogs_finished_total",
			Help: "Total number of dialogs finished or replaced.",
		},
	)

	chatMessagesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_messages_total",
			Help: "Total number of user chat messages answered.",
		},
	)

	quotaDenialsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quota_denials_total",
			Help: "Dialog starts denied by the daily quota.",
		},
	)

	rateLimitBlocksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rate_limit_blocks_total",
			Help: "Messages rejected by the per-user rate limiter.",
		},
	)

	broadcastDeliveredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcast_delivered_total",
			Help: "Broadcast messages delivered.",
		},
	)

	broadcastFailedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcast_failed_total",
			Help: "Broadcast messages that failed to deliver.",
		},
	)
)

func IncDialogStarted()  { dialogsStartedTotal.Inc() }
func IncDialogFinished() { dialogsFinishedTotal.Inc() }
func IncChatMessage()    { chatMessagesTotal.Inc() }
func IncQuotaDenied()    { quotaDenialsTotal.Inc() }
func IncRateLimited()    { rateLimitBlocksTotal.Inc() }

func AddBroadcastResult(delivered, failed int) {
	broadcastDeliveredTotal.Add(float64(delivered))
	broadcastFailedTotal.Add(float64(failed))
}
