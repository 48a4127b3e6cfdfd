package ai

import (
	"bufio"
	"os"
	"strings"

	"detectserver/internal/detection"

	"github.com/pkg/errors"
)

// cocoNames are the 80 COCO classes in YOLO order.
var cocoNames = []string{
	"person", "bicycle", "car", "motorcycle", "airplane", "bus", "train", "truck", "boat",
	"traffic light", "fire hydrant", "stop sign", "parking meter", "bench", "bird", "cat",
	"dog", "horse", "sheep", "cow", "elephant", "bear", "zebra", "giraffe", "backpack",
	"umbrella", "handbag", "tie", "suitcase", "frisbee", "skis", "snowboard", "sports ball",
	"kite", "baseball bat", "baseball glove", "skateboard", "surfboard", "tennis racket",
	"bottle", "wine glass", "cup", "fork", "knife", "spoon", "bowl", "banana", "apple",
	"sandwich", "orange", "broccoli", "carrot", "hot dog", "pizza", "donut", "cake", "chair",
	"couch", "potted plant", "bed", "dining table", "toilet", "tv", "laptop", "mouse",
	"remote", "keyboard", "cell phone", "microwave", "oven", "toaster", "sink",
	"refrigerator", "book", "clock", "vase", "scissors", "teddy bear", "hair drier",
	"toothbrush",
}

// cocoPaperIDs are the original 91-category ids of cocoNames, as emitted by
// TensorFlow SSD exports.
var cocoPaperIDs = []int{
	1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24, 25,
	27, 28, 31, 32, 33, 34, 35, 36, 37, 38, 39, 40, 41, 42, 43, 44, 46, 47, 48, 49, 50, 51,
	52, 53, 54, 55, 56, 57, 58, 59, 60, 61, 62, 63, 64, 65, 67, 70, 72, 73, 74, 75, 76, 77,
	78, 79, 80, 81, 82, 84, 85, 86, 87, 88, 89, 90,
}

// COCOLabels returns the zero-based 80-class table used by YOLO models.
func COCOLabels() detection.LabelTable {
	labels := make(detection.LabelTable, len(cocoNames))
	for i, name := range cocoNames {
		labels[i] = name
	}
	return labels
}

// COCOPaperLabels returns the sparse 91-id table used by TensorFlow SSD models.
func COCOPaperLabels() detection.LabelTable {
	labels := make(detection.LabelTable, len(cocoNames))
	for i, name := range cocoNames {
		labels[cocoPaperIDs[i]] = name
	}
	return labels
}

// LoadLabels reads one label per line; the line number (from 0) is the class id.
// Blank lines keep their id but get no label.
func LoadLabels(path string) (detection.LabelTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open labels file")
	}
	defer file.Close()

	labels := make(detection.LabelTable)
	scanner := bufio.NewScanner(file)
	for id := 0; scanner.Scan(); id++ {
		if name := strings.TrimSpace(scanner.Text()); name != "" {
			labels[id] = name
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read labels file")
	}
	if len(labels) == 0 {
		return nil, errors.Errorf("labels file %s is empty", path)
	}

	return labels, nil
}

// classCount is one past the highest class id in labels.
func classCount(labels detection.LabelTable) int {
	n := 0
	for id := range labels {
		n = max(n, id+1)
	}
	return n
}
