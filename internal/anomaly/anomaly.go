package anomaly

import (
	"math"

	"github.com/DMounas/TradePulse-HFT/models"
)

// minSamples is how many prices the window needs before a z-score is
// statistically meaningful.
const minSamples = 20

// zThreshold is the pump/dump boundary in standard deviations.
const zThreshold = 2.0

// Classify scores currentPrice against the window contents and returns
// a verdict. It is a pure function: no state, same inputs give the
// same result.
func Classify(prices []float64, currentPrice float64) models.Classification {
	if len(prices) < minSamples {
		return models.Classification{
			Status:    models.StatusCalibrating,
			MeanPrice: currentPrice,
		}
	}

	mean := meanOf(prices)
	stdDev := stdDevOf(prices, mean)

	// A flat window makes the z-score undefined, not anomalous.
	if stdDev == 0 {
		return models.Classification{
			Status:    models.StatusStable,
			MeanPrice: mean,
		}
	}

	z := (currentPrice - mean) / stdDev

	status := models.StatusNormal
	switch {
	case z > zThreshold:
		status = models.StatusPumpDetected
	case z < -zThreshold:
		status = models.StatusDumpDetected
	}

	// Rounding is presentation only and happens after the threshold
	// comparison.
	return models.Classification{
		Status:    status,
		ZScore:    round2(z),
		MeanPrice: round2(mean),
	}
}

func meanOf(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDevOf computes the population standard deviation.
func stdDevOf(values []float64, mean float64) float64 {
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
