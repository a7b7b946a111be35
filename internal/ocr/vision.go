// Package ocr extracts text from page images through Google Cloud Vision.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/alkhaleej/docextract/internal/common"
	"github.com/alkhaleej/docextract/internal/retry"
)

// Config for the Vision extractor.
type Config struct {
	CredentialsFile string
	CallTimeout     time.Duration // per AnnotateImage call, default 90s
	OverallDeadline time.Duration // per Extract invocation, default 180s
	MaxAttempts     int           // local retry attempts, default 3
}

// annotator is the seam between the extractor and the Vision client so
// tests can stub the remote call.
type annotator interface {
	AnnotateImage(ctx context.Context, req *visionpb.AnnotateImageRequest, opts ...gax.CallOption) (*visionpb.AnnotateImageResponse, error)
	Close() error
}

// VisionExtractor implements TextExtractor over the Vision API. Safe for
// concurrent use; the underlying client pools its gRPC connection.
type VisionExtractor struct {
	cfg    Config
	client annotator
	policy retry.Policy
	logger *slog.Logger
}

// NewVisionExtractor dials the Vision API. The client must be closed on
// process shutdown via Close.
func NewVisionExtractor(ctx context.Context, cfg Config, logger *slog.Logger) (*VisionExtractor, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create vision client: %w", err)
	}
	return newVisionExtractor(cfg, annotatorClient{client}, logger), nil
}

// annotatorClient adapts ImageAnnotatorClient to the annotator seam. The
// vision/v2 module exposes only batch RPCs; a single-image call is a batch
// of one, as in the legacy client's AnnotateImage helper.
type annotatorClient struct {
	*vision.ImageAnnotatorClient
}

func (c annotatorClient) AnnotateImage(ctx context.Context, req *visionpb.AnnotateImageRequest, opts ...gax.CallOption) (*visionpb.AnnotateImageResponse, error) {
	res, err := c.BatchAnnotateImages(ctx, &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{req},
	}, opts...)
	if err != nil {
		return nil, err
	}
	return res.Responses[0], nil
}

func newVisionExtractor(cfg Config, client annotator, logger *slog.Logger) *VisionExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 90 * time.Second
	}
	if cfg.OverallDeadline <= 0 {
		cfg.OverallDeadline = 180 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	return &VisionExtractor{
		cfg:    cfg,
		client: client,
		policy: retry.Policy{
			MaxAttempts: cfg.MaxAttempts,
			Backoff:     retry.ExpBackoff,
			Retryable:   isTransient,
		},
		logger: logger,
	}
}

// Close releases the underlying gRPC channel.
func (e *VisionExtractor) Close() error {
	return e.client.Close()
}

// Extract submits one image for text detection. Zero detected regions is a
// valid ("", 0.0) result, not an error. Transient service failures are
// retried up to MaxAttempts with exponential backoff on top of the
// service's own retry envelope; exhaustion or a non-transient failure
// yields an error wrapping common.ErrOCRService with the last cause.
func (e *VisionExtractor) Extract(ctx context.Context, image []byte) (Result, error) {
	var res Result
	start := time.Now()

	err := e.policy.Do(ctx, e.logger, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, e.cfg.OverallDeadline)
		defer cancel()

		req := &visionpb.AnnotateImageRequest{
			Image: &visionpb.Image{Content: image},
			Features: []*visionpb.Feature{
				{Type: visionpb.Feature_TEXT_DETECTION},
			},
		}
		resp, err := e.client.AnnotateImage(callCtx, req,
			gax.WithTimeout(e.cfg.CallTimeout),
			gax.WithRetry(func() gax.Retryer {
				return gax.OnCodes([]codes.Code{
					codes.Unavailable,
					codes.Internal,
					codes.DeadlineExceeded,
				}, gax.Backoff{
					Initial:    2 * time.Second,
					Max:        60 * time.Second,
					Multiplier: 2,
				})
			}),
		)
		if err != nil {
			return err
		}
		if respErr := resp.GetError(); respErr != nil && respErr.GetMessage() != "" {
			return fmt.Errorf("vision api error: %s", respErr.GetMessage())
		}

		annotations := resp.GetTextAnnotations()
		if len(annotations) == 0 {
			res = Result{Text: "", Confidence: 0.0}
			return nil
		}
		res = Result{
			Text:       annotations[0].GetDescription(),
			Confidence: meanConfidence(annotations),
		}
		return nil
	})
	if err != nil {
		e.logger.Error("ocr.extract.failed",
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return Result{}, fmt.Errorf("%w: %v", common.ErrOCRService, err)
	}

	e.logger.Debug("ocr.extract.ok",
		"text_len", len(res.Text),
		"confidence", res.Confidence,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// isTransient classifies the three retryable failure kinds of the OCR
// service: unavailable, internal error, deadline exceeded.
func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	switch status.Code(err) {
	case codes.Unavailable, codes.Internal, codes.DeadlineExceeded:
		return true
	default:
		return false
	}
}
