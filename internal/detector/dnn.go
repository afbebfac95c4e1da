package detector

import (
	"fmt"
	"image"
	"os"

	"gocv.io/x/gocv"

	"reviewer/internal/logger"
	"reviewer/internal/models"
)

// minReportConfidence filters out the network's background noise rows
// before the validator applies the configured threshold.
const minReportConfidence = 0.1

// DNNDetector runs an SSD MobileNet network via OpenCV's DNN module.
// A gocv.Net is not safe for concurrent Forward calls, so each worker
// gets its own instance.
type DNNDetector struct {
	net    gocv.Net
	logger *logger.Logger
}

func NewDNNDetector(modelPath, configPath string, log *logger.Logger) (*DNNDetector, error) {
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", modelPath)
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model config file not found: %s", configPath)
	}

	net := gocv.ReadNet(modelPath, configPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load network from %s", modelPath)
	}

	if err := net.SetPreferableBackend(gocv.NetBackendDefault); err != nil {
		return nil, fmt.Errorf("failed to set network backend: %w", err)
	}
	if err := net.SetPreferableTarget(gocv.NetTargetCPU); err != nil {
		return nil, fmt.Errorf("failed to set network target: %w", err)
	}

	log.Info("Detection network loaded from %s", modelPath)
	return &DNNDetector{net: net, logger: log}, nil
}

// Detect decodes the image and runs one forward pass. Results come
// back in network order with boxes in pixel coordinates.
func (d *DNNDetector) Detect(imageBytes []byte) ([]models.DetectionResult, error) {
	mat, err := gocv.IMDecode(imageBytes, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	defer mat.Close()

	if mat.Empty() {
		return nil, fmt.Errorf("decoded image is empty")
	}

	blob := gocv.BlobFromImage(mat, 1.0/127.5, image.Pt(300, 300), gocv.NewScalar(127.5, 127.5, 127.5, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")

	output := d.net.Forward("")
	defer output.Close()

	cols := float64(mat.Cols())
	rows := float64(mat.Rows())

	var results []models.DetectionResult

	// Each output row is [batch, classID, confidence, left, top, right, bottom].
	reshaped := output.Reshape(1, output.Total()/7)
	defer reshaped.Close()
	for i := 0; i < reshaped.Rows(); i++ {
		confidence := float64(reshaped.GetFloatAt(i, 2))
		if confidence < minReportConfidence {
			continue
		}

		classID := int(reshaped.GetFloatAt(i, 1))
		left := float64(reshaped.GetFloatAt(i, 3)) * cols
		top := float64(reshaped.GetFloatAt(i, 4)) * rows
		right := float64(reshaped.GetFloatAt(i, 5)) * cols
		bottom := float64(reshaped.GetFloatAt(i, 6)) * rows

		results = append(results, models.DetectionResult{
			Label:      classLabel(classID),
			Confidence: confidence,
			X:          left,
			Y:          top,
			Width:      right - left,
			Height:     bottom - top,
		})
	}

	return results, nil
}

// Close releases the network.
func (d *DNNDetector) Close() error {
	return d.net.Close()
}

// classLabel maps COCO class IDs to the labels Frigate uses.
func classLabel(classID int) string {
	labels := map[int]string{
		1:  "person",
		2:  "bicycle",
		3:  "car",
		4:  "motorcycle",
		6:  "bus",
		8:  "truck",
		16: "bird",
		17: "cat",
		18: "dog",
	}

	if label, exists := labels[classID]; exists {
		return label
	}
	return fmt.Sprintf("class_%d", classID)
}
