package ai

import (
	"context"
	"os"

	"detectserver/internal/detection"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
	"gocv.io/x/gocv"
)

// ONNXConfig configures a YOLOv8-style ONNX Runtime detector.
type ONNXConfig struct {
	ModelPath           string
	LibraryPath         string
	InputSize           int
	ConfidenceThreshold float32
	NMSThreshold        float32
	Labels              detection.LabelTable
}

// ONNXDetector runs a YOLOv8 export (input [1,3,S,S], output [1,4+C,N]).
// Its session is bound to one pair of tensors, so it must not run concurrently.
type ONNXDetector struct {
	session    *ort.AdvancedSession
	input      *ort.Tensor[float32]
	output     *ort.Tensor[float32]
	inputSize  int
	numClasses int
	anchors    int
	confidence float32
	nms        float32
	labels     detection.LabelTable
}

// NewONNXDetector initializes the ONNX Runtime environment and loads the model.
func NewONNXDetector(cfg ONNXConfig) (*ONNXDetector, error) {
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, errors.Wrapf(err, "model file not found: %s", cfg.ModelPath)
	}
	if cfg.InputSize <= 0 || cfg.InputSize%32 != 0 {
		return nil, errors.Errorf("input size %d must be a positive multiple of 32", cfg.InputSize)
	}
	if len(cfg.Labels) == 0 {
		return nil, errors.New("onnx detector needs a label table")
	}

	if !ort.IsInitialized() {
		if _, err := os.Stat(cfg.LibraryPath); err != nil {
			return nil, errors.Wrapf(err, "ONNX Runtime library not found at %s", cfg.LibraryPath)
		}
		ort.SetSharedLibraryPath(cfg.LibraryPath)
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, errors.Wrap(err, "initialize ONNX Runtime environment")
		}
	}

	numClasses := classCount(cfg.Labels)
	anchors := anchorCount(cfg.InputSize)

	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 3, int64(cfg.InputSize), int64(cfg.InputSize)))
	if err != nil {
		return nil, errors.Wrap(err, "create input tensor")
	}

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(4+numClasses), int64(anchors)))
	if err != nil {
		input.Destroy()
		return nil, errors.Wrap(err, "create output tensor")
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, errors.Wrap(err, "create session options")
	}
	defer options.Destroy()

	options.SetIntraOpNumThreads(4)
	options.SetInterOpNumThreads(2)
	options.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableExtended)

	session, err := ort.NewAdvancedSession(
		cfg.ModelPath,
		[]string{"images"},
		[]string{"output0"},
		[]ort.Value{input},
		[]ort.Value{output},
		options,
	)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, errors.Wrap(err, "create ONNX session")
	}

	return &ONNXDetector{
		session:    session,
		input:      input,
		output:     output,
		inputSize:  cfg.InputSize,
		numClasses: numClasses,
		anchors:    anchors,
		confidence: cfg.ConfidenceThreshold,
		nms:        cfg.NMSThreshold,
		labels:     cfg.Labels,
	}, nil
}

// Predict runs the model on img and returns boxes scaled to img.
func (d *ONNXDetector) Predict(ctx context.Context, img gocv.Mat) ([]detection.RawBox, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if img.Empty() {
		return nil, errors.New("cannot run detection on an empty image")
	}

	if err := d.prepareInput(img); err != nil {
		return nil, err
	}

	if err := d.session.Run(); err != nil {
		return nil, errors.Wrap(err, "run inference")
	}

	candidates := decodeYOLO(d.output.GetData(), yoloLayout{
		numClasses: d.numClasses,
		anchors:    d.anchors,
		inputSize:  d.inputSize,
		width:      img.Cols(),
		height:     img.Rows(),
		threshold:  d.confidence,
	})
	kept := suppress(candidates, d.nms)

	boxes := make([]detection.RawBox, 0, len(kept))
	for _, c := range kept {
		boxes = append(boxes, clampBox(c.X1, c.Y1, c.X2, c.Y2, c.Score, c.ClassID, img.Cols(), img.Rows()))
	}
	return boxes, nil
}

// prepareInput resizes img to the model input and writes it as planar RGB in [0, 1].
func (d *ONNXDetector) prepareInput(img gocv.Mat) error {
	src, err := img.ToImage()
	if err != nil {
		return errors.Wrap(err, "convert image")
	}
	resized := imaging.Resize(src, d.inputSize, d.inputSize, imaging.Linear)

	data := d.input.GetData()
	plane := d.inputSize * d.inputSize
	red, green, blue := data[:plane], data[plane:2*plane], data[2*plane:3*plane]

	i := 0
	for y := 0; y < d.inputSize; y++ {
		for x := 0; x < d.inputSize; x++ {
			px := resized.Pix[y*resized.Stride+x*4:]
			red[i] = float32(px[0]) / 255.0
			green[i] = float32(px[1]) / 255.0
			blue[i] = float32(px[2]) / 255.0
			i++
		}
	}
	return nil
}

// Labels returns the label table the model indexes into.
func (d *ONNXDetector) Labels() detection.LabelTable {
	return d.labels
}

// Close releases the session and its tensors.
func (d *ONNXDetector) Close() error {
	var firstErr error
	for _, destroy := range []func() error{d.session.Destroy, d.input.Destroy, d.output.Destroy} {
		if err := destroy(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// anchorCount is the number of YOLOv8 predictions for a square input of size s
// (strides 8, 16 and 32).
func anchorCount(size int) int {
	n := 0
	for _, stride := range []int{8, 16, 32} {
		n += (size / stride) * (size / stride)
	}
	return n
}

type yoloLayout struct {
	numClasses    int
	anchors       int
	inputSize     int
	width, height int
	threshold     float32
}

// decodeYOLO reads a channel-major [4+C, N] output: cx, cy, w, h rows followed
// by one score row per class. Boxes are rescaled from the model input to the
// source image.
func decodeYOLO(output []float32, l yoloLayout) []candidate {
	if len(output) < (4+l.numClasses)*l.anchors {
		return nil
	}

	scaleX := float32(l.width) / float32(l.inputSize)
	scaleY := float32(l.height) / float32(l.inputSize)
	n := l.anchors

	var candidates []candidate
	for idx := 0; idx < n; idx++ {
		classID, score := -1, float32(0)
		for c := 0; c < l.numClasses; c++ {
			if s := output[n*(4+c)+idx]; s > score {
				classID, score = c, s
			}
		}
		if classID < 0 || score < l.threshold {
			continue
		}

		xc, yc := output[idx], output[n+idx]
		w, h := output[2*n+idx], output[3*n+idx]
		candidates = append(candidates, candidate{
			X1:      (xc - w/2) * scaleX,
			Y1:      (yc - h/2) * scaleY,
			X2:      (xc + w/2) * scaleX,
			Y2:      (yc + h/2) * scaleY,
			Score:   min(score, 1),
			ClassID: classID,
		})
	}
	return candidates
}
