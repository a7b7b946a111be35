package ocr

import "cloud.google.com/go/vision/v2/apiv1/visionpb"

// meanConfidence averages per-token confidences. The first annotation is
// the full-page aggregate text and is excluded; tokens without a reported
// confidence are skipped. No scored tokens means 0.0.
func meanConfidence(annotations []*visionpb.EntityAnnotation) float64 {
	if len(annotations) < 2 {
		return 0.0
	}
	var sum float64
	var n int
	for _, a := range annotations[1:] {
		c := float64(a.GetConfidence())
		if c <= 0 {
			continue
		}
		sum += c
		n++
	}
	if n == 0 {
		return 0.0
	}
	return sum / float64(n)
}
