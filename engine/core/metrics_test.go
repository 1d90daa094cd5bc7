package core

import "testing"

func TestMetricsFrameTimeAverage(t *testing.T) {
	if err := MetricsInitialize(); err != nil {
		t.Fatalf("metrics failed to initialize: %v", err)
	}

	for i := 0; i < frameAvgCount; i++ {
		MetricsUpdate(0.016)
	}

	avg := MetricsFrameTime()
	if avg < 15.9 || avg > 16.1 {
		t.Fatalf("expected ~16ms average, got %f", avg)
	}
}

func TestMetricsFPSRollsOverAfterOneSecond(t *testing.T) {
	if err := MetricsInitialize(); err != nil {
		t.Fatalf("metrics failed to initialize: %v", err)
	}

	// 11 frames of 100ms push the accumulator past one second.
	for i := 0; i < 11; i++ {
		MetricsUpdate(0.1)
	}

	if fps := MetricsFPS(); fps < 9 || fps > 11 {
		t.Fatalf("expected roughly 10 fps, got %f", fps)
	}
}

func TestMetricsInitializeResetsCounters(t *testing.T) {
	if err := MetricsInitialize(); err != nil {
		t.Fatalf("metrics failed to initialize: %v", err)
	}
	for i := 0; i < 20; i++ {
		MetricsUpdate(0.1)
	}
	if MetricsFPS() == 0 {
		t.Fatalf("expected fps to accumulate before the reset")
	}

	if err := MetricsInitialize(); err != nil {
		t.Fatalf("metrics failed to re-initialize: %v", err)
	}
	if fps := MetricsFPS(); fps != 0 {
		t.Fatalf("re-initialization should reset fps, got %f", fps)
	}
	if avg := MetricsFrameTime(); avg != 0 {
		t.Fatalf("re-initialization should reset frame time, got %f", avg)
	}
}
