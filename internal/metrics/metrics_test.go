package metrics

import "testing"

type recordingBackend struct {
	counters   map[string]float64
	histograms map[string][]float64
	flushed    int
}

func newRecordingBackend() *recordingBackend {
	return &recordingBackend{
		counters:   map[string]float64{},
		histograms: map[string][]float64{},
	}
}

func (r *recordingBackend) IncCounter(name string, delta float64, _ Labels) {
	r.counters[name] += delta
}

func (r *recordingBackend) ObserveHistogram(name string, value float64, _ Labels) {
	r.histograms[name] = append(r.histograms[name], value)
}

func (r *recordingBackend) Flush() error {
	r.flushed++
	return nil
}

func TestBackendForwarding(t *testing.T) {
	rec := newRecordingBackend()
	SetBackend(rec)
	defer SetBackend(nil)

	IncCounter(RecordsTotal, 3, Labels{"kind": "read"})
	IncCounter(RecordsTotal, 2, Labels{"kind": "read"})
	ObserveHistogram(StepDurationSeconds, 0.25, Labels{"step": "reading"})
	if err := Flush(); err != nil {
		t.Fatal(err)
	}

	if rec.counters[RecordsTotal] != 5 {
		t.Fatalf("counter = %v", rec.counters[RecordsTotal])
	}
	if len(rec.histograms[StepDurationSeconds]) != 1 {
		t.Fatalf("histograms = %v", rec.histograms)
	}
	if rec.flushed != 1 {
		t.Fatalf("flushed = %d", rec.flushed)
	}
}

func TestNilBackendRestoresNop(t *testing.T) {
	rec := newRecordingBackend()
	SetBackend(rec)
	SetBackend(nil)

	IncCounter(RecordsTotal, 1, nil)
	if err := Flush(); err != nil {
		t.Fatal(err)
	}
	if rec.counters[RecordsTotal] != 0 || rec.flushed != 0 {
		t.Fatal("recording backend still installed")
	}
}
