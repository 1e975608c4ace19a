// internal/common/aws/rekognition.go
package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

// RekognitionAPI is the subset of the Rekognition client used for text detection.
type RekognitionAPI interface {
	DetectText(ctx context.Context, params *rekognition.DetectTextInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectTextOutput, error)
}

// RekognitionTextDetector reads text from images already stored in S3.
type RekognitionTextDetector struct {
	client        RekognitionAPI
	minConfidence float32
}

func NewRekognitionTextDetector(cfg aws.Config, minConfidence float64) *RekognitionTextDetector {
	return NewRekognitionTextDetectorWithClient(rekognition.NewFromConfig(cfg), minConfidence)
}

func NewRekognitionTextDetectorWithClient(client RekognitionAPI, minConfidence float64) *RekognitionTextDetector {
	return &RekognitionTextDetector{client: client, minConfidence: float32(minConfidence)}
}

// DetectText returns every detection (lines and words) in service order.
// Detections below the configured confidence are skipped.
func (d *RekognitionTextDetector) DetectText(ctx context.Context, bucket, key string) ([]string, error) {
	out, err := d.client.DetectText(ctx, &rekognition.DetectTextInput{
		Image: &types.Image{
			S3Object: &types.S3Object{
				Bucket: aws.String(bucket),
				Name:   aws.String(key),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("detect text s3://%s/%s: %w", bucket, key, err)
	}

	texts := make([]string, 0, len(out.TextDetections))
	for _, det := range out.TextDetections {
		if det.DetectedText == nil {
			continue
		}
		if d.minConfidence > 0 && det.Confidence != nil && *det.Confidence < d.minConfidence {
			continue
		}
		texts = append(texts, *det.DetectedText)
	}
	return texts, nil
}
