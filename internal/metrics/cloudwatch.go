// Package metrics publishes assessment and API telemetry to CloudWatch.
package metrics

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"biotwin/internal/types"
)

// CloudWatchClient abstracts the CloudWatch PutMetricData operation for testability.
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

const (
	// publishTimeout bounds one PutMetricData call.
	publishTimeout = 2 * time.Second

	// DefaultBufferSize is the number of pending recordings held before new
	// ones are dropped.
	DefaultBufferSize = 1024

	// DefaultFlushInterval is how often Start publishes buffered data.
	DefaultFlushInterval = 15 * time.Second

	// maxDatumsPerPut is the CloudWatch PutMetricData limit.
	maxDatumsPerPut = 1000
)

// CloudWatchRecorder emits metrics to AWS CloudWatch.
//
// Recording never calls CloudWatch. Data is queued on a bounded buffer and
// published by Flush, by the loop launched with Start, or by Close. When the
// buffer is full new recordings are dropped and counted.
//
// Metrics emitted:
//   - AssessmentCompleted / AssessmentFailed: Dims {Source}
//   - BioScore, AdjustedBioScore, LongevityScore: Dims {Source}
//   - CorrelationAlerts: Dims {RiskLevel}, one datum per level present
//   - APILatency (ms), APIRequest: Dims {Endpoint, Status}
type CloudWatchRecorder struct {
	client    CloudWatchClient
	namespace string
	logger    types.Logger
	now       func() time.Time

	pending chan []cwtypes.MetricDatum
	kick    chan struct{}
	dropped atomic.Int64

	mu      sync.Mutex
	started bool
	closed  bool
	stop    chan struct{}
	done    chan struct{}
}

// NewCloudWatchRecorder creates a recorder with a DefaultBufferSize buffer.
// An empty namespace falls back to types.MetricNamespace.
func NewCloudWatchRecorder(client CloudWatchClient, namespace string, logger types.Logger) *CloudWatchRecorder {
	return newRecorder(client, namespace, logger, DefaultBufferSize)
}

func newRecorder(client CloudWatchClient, namespace string, logger types.Logger, bufferSize int) *CloudWatchRecorder {
	if namespace == "" {
		namespace = types.MetricNamespace
	}
	return &CloudWatchRecorder{
		client:    client,
		namespace: namespace,
		logger:    logger,
		now:       time.Now,
		pending:   make(chan []cwtypes.MetricDatum, bufferSize),
		kick:      make(chan struct{}, 1),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// RecordAssessment queues the completion count, the three scores and the
// alert counts of one assessment.
func (m *CloudWatchRecorder) RecordAssessment(_ context.Context, source string, a *types.Assessment) {
	srcDim := []cwtypes.Dimension{dim(types.DimSource, source)}

	data := []cwtypes.MetricDatum{
		m.datum(types.MetricAssessmentCompleted, 1, cwtypes.StandardUnitCount, srcDim),
		m.datum(types.MetricBioScore, float64(a.BioScore), cwtypes.StandardUnitNone, srcDim),
		m.datum(types.MetricAdjustedBioScore, float64(a.Adjusted.AdjustedScore), cwtypes.StandardUnitNone, srcDim),
		m.datum(types.MetricLongevityScore, float64(a.LongevityScore), cwtypes.StandardUnitNone, srcDim),
	}

	counts := make(map[types.RiskLevel]int)
	var order []types.RiskLevel
	for _, alert := range a.Alerts {
		if counts[alert.RiskLevel] == 0 {
			order = append(order, alert.RiskLevel)
		}
		counts[alert.RiskLevel]++
	}
	for _, level := range order {
		data = append(data, m.datum(types.MetricCorrelationAlerts, float64(counts[level]), cwtypes.StandardUnitCount,
			[]cwtypes.Dimension{dim(types.DimRiskLevel, string(level))}))
	}

	m.enqueue(data)
}

// RecordAssessmentFailure queues one AssessmentFailed count.
func (m *CloudWatchRecorder) RecordAssessmentFailure(_ context.Context, source string) {
	m.enqueue([]cwtypes.MetricDatum{
		m.datum(types.MetricAssessmentFailed, 1, cwtypes.StandardUnitCount,
			[]cwtypes.Dimension{dim(types.DimSource, source)}),
	})
}

// RecordRequest queues API latency and request count. It satisfies the HTTP
// server's metrics collector and returns without waiting on CloudWatch.
func (m *CloudWatchRecorder) RecordRequest(method, endpoint, status string, duration time.Duration) {
	dims := []cwtypes.Dimension{
		dim(types.DimEndpoint, method+" "+endpoint),
		dim(types.DimStatus, status),
	}
	m.enqueue([]cwtypes.MetricDatum{
		m.datum(types.MetricAPILatency, float64(duration.Milliseconds()), cwtypes.StandardUnitMilliseconds, dims),
		m.datum(types.MetricAPIRequest, 1, cwtypes.StandardUnitCount, dims),
	})
}

func (m *CloudWatchRecorder) enqueue(data []cwtypes.MetricDatum) {
	select {
	case m.pending <- data:
	default:
		m.dropped.Add(1)
		return
	}
	// Wake the publisher early once half the buffer is used.
	if len(m.pending) >= cap(m.pending)/2 {
		select {
		case m.kick <- struct{}{}:
		default:
		}
	}
}

// Start launches the background publisher. It flushes every interval and
// whenever the buffer is half full, until Close. Calling Start twice, or
// after Close, does nothing.
func (m *CloudWatchRecorder) Start(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultFlushInterval
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started || m.closed {
		return
	}
	m.started = true
	go m.run(interval)
}

func (m *CloudWatchRecorder) run(interval time.Duration) {
	defer close(m.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Flush()
		case <-m.kick:
			m.Flush()
		case <-m.stop:
			m.Flush()
			return
		}
	}
}

// Close stops the publisher and publishes whatever is still buffered.
// Recordings made after Close stay in the buffer until an explicit Flush.
func (m *CloudWatchRecorder) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	started := m.started
	m.mu.Unlock()

	if !started {
		m.Flush()
		return
	}
	close(m.stop)
	<-m.done
}

// Flush publishes everything buffered so far, in chunks of at most 1000
// datums. Publish errors are logged and never returned.
func (m *CloudWatchRecorder) Flush() {
	var data []cwtypes.MetricDatum
drain:
	for {
		select {
		case d := <-m.pending:
			data = append(data, d...)
		default:
			break drain
		}
	}

	if n := m.dropped.Swap(0); n > 0 && m.logger != nil {
		m.logger.Warn("metrics buffer full, recordings dropped", "dropped", n)
	}

	for len(data) > 0 {
		n := min(len(data), maxDatumsPerPut)
		m.put(data[:n:n])
		data = data[n:]
	}
}

func (m *CloudWatchRecorder) put(data []cwtypes.MetricDatum) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: data,
	})
	if err != nil && m.logger != nil {
		m.logger.Error("failed to publish metrics", "datums", len(data), "error", err.Error())
	}
}

// datum stamps the recording time; publishing happens later.
func (m *CloudWatchRecorder) datum(name string, value float64, unit cwtypes.StandardUnit, dims []cwtypes.Dimension) cwtypes.MetricDatum {
	return cwtypes.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(value),
		Unit:       unit,
		Dimensions: dims,
		Timestamp:  aws.Time(m.now()),
	}
}

func dim(name, value string) cwtypes.Dimension {
	return cwtypes.Dimension{Name: aws.String(name), Value: aws.String(value)}
}
