package core

// Number of frames averaged into the reported frame time.
const frameAvgCount = 30

type MetricsState struct {
	frameAvgCounter    int
	msTimes            [frameAvgCount]float64
	msAvg              float64
	frames             int32
	accumulatedFrameMS float64
	fps                float64
}

var metricsState *MetricsState

// MetricsInitialize starts the counters from a clean slate. Safe to call
// again to reset them.
func MetricsInitialize() error {
	metricsState = &MetricsState{}
	return nil
}

// MetricsUpdate records one frame's elapsed time (in seconds) and refreshes
// the rolling frame-time average and the FPS counter.
func MetricsUpdate(frameElapsedTime float64) {
	frameMS := frameElapsedTime * 1000.0
	metricsState.msTimes[metricsState.frameAvgCounter] = frameMS
	if metricsState.frameAvgCounter == frameAvgCount-1 {
		sum := 0.0
		for i := 0; i < frameAvgCount; i++ {
			sum += metricsState.msTimes[i]
		}
		metricsState.msAvg = sum / frameAvgCount
	}
	metricsState.frameAvgCounter = (metricsState.frameAvgCounter + 1) % frameAvgCount

	metricsState.accumulatedFrameMS += frameMS
	if metricsState.accumulatedFrameMS > 1000 {
		metricsState.fps = float64(metricsState.frames)
		metricsState.accumulatedFrameMS -= 1000
		metricsState.frames = 0
	}
	metricsState.frames++
}

func MetricsFPS() float64 {
	return metricsState.fps
}

func MetricsFrameTime() float64 {
	return metricsState.msAvg
}

// MetricsFrame returns FPS and average frame time in milliseconds.
func MetricsFrame() (float64, float64) {
	return metricsState.fps, metricsState.msAvg
}
