package main

import (
	"io"
	"sync"

	"github.com/autograde/go-grader/filestore"
	"github.com/autograde/go-grader/judger"
	"github.com/autograde/go-grader/submission"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "grader"
)

var (
	// 1ms -> 60s
	timeBuckets = []float64{
		0.001, 0.002, 0.005, 0.010, 0.025, 0.050, 0.1, 0.2, 0.4, 0.6, 0.8,
		1.0, 1.5, 2, 5, 10, 20, 30, 60,
	}

	// 256 byte (1<<8) -> 256m (1<<28)
	fileSizeBucket = prometheus.ExponentialBuckets(1<<8, 2, 20)

	gradeCount = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "submissions_total",
		Help:      "Number of graded submissions by result",
	}, []string{"result"})

	stageTimeHist = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "stage_time_seconds",
		Help:      "Histogram for the time of each submission stage",
		Buckets:   timeBuckets,
	}, []string{"stage", "status"})

	caseCount = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "cases_total",
		Help:      "Number of evaluated test cases by verdict",
	}, []string{"verdict"})

	marksRatioHist = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "marks_ratio",
		Help:      "Histogram for the ratio of passed cases per submission",
		Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
	})

	uploadSizeHist = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "upload_size_bytes",
		Help:      "Histogram for the size of uploaded archives",
		Buckets:   fileSizeBucket,
	})

	uploadCurrent = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "upload_current_total",
		Help:      "Total number of uploaded archives in the file store",
	})
)

func init() {
	prometheus.MustRegister(gradeCount, stageTimeHist, caseCount, marksRatioHist)
	prometheus.MustRegister(uploadSizeHist, uploadCurrent)
}

func stageObserve(r submission.StageResult) {
	status := "ok"
	switch {
	case r.Err != nil:
		status = "error"
	case r.ExitStatus != 0:
		status = "failed"
	}
	stageTimeHist.WithLabelValues(r.Stage, status).Observe(r.Duration.Seconds())
}

func caseObserve(r judger.CaseResult) {
	verdict := "failed"
	if r.Verdict.Passed {
		verdict = "passed"
	}
	caseCount.WithLabelValues(verdict).Inc()
}

func gradeObserve(rt *judger.Report, err error) {
	if err != nil {
		gradeCount.WithLabelValues(submission.KindOf(err).String()).Inc()
		return
	}
	gradeCount.WithLabelValues("graded").Inc()
	if rt.TotalTests > 0 {
		marksRatioHist.Observe(float64(rt.Marks) / float64(rt.TotalTests))
	}
}

var _ filestore.FileStore = &metricsFileStore{}

type metricsFileStore struct {
	filestore.FileStore
	mu sync.Mutex
}

func newMetricsFileStore(fs filestore.FileStore) filestore.FileStore {
	return &metricsFileStore{FileStore: fs}
}

func (m *metricsFileStore) Add(name string, r io.Reader) (string, error) {
	cr := &countReader{Reader: r}
	id, err := m.FileStore.Add(name, cr)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	uploadSizeHist.Observe(float64(cr.n))
	uploadCurrent.Inc()
	return id, nil
}

func (m *metricsFileStore) Remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	success := m.FileStore.Remove(id)
	if success {
		uploadCurrent.Dec()
	}
	return success
}

type countReader struct {
	io.Reader
	n int64
}

func (c *countReader) Read(p []byte) (int, error) {
	n, err := c.Reader.Read(p)
	c.n += int64(n)
	return n, err
}
