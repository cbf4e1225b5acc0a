package services

import (
	"context"
	"fmt"

	"dietvision/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

type labelDetector interface {
	DetectLabels(ctx context.Context, in *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
}

// RekognitionClassifier uses generic label detection. It is less precise than a
// trained food model but needs no deployed endpoint.
type RekognitionClassifier struct {
	client labelDetector
}

func NewRekognitionClassifier(cfg aws.Config) *RekognitionClassifier {
	return &RekognitionClassifier{client: rekognition.NewFromConfig(cfg)}
}

func (r *RekognitionClassifier) Classify(ctx context.Context, image []byte) (*models.Prediction, error) {
	out, err := r.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: image},
		MaxLabels:     aws.Int32(5),
		MinConfidence: aws.Float32(75),
	})
	if err != nil {
		return nil, fmt.Errorf("detect labels: %w", err)
	}

	labels := make([]string, 0, len(out.Labels))
	scores := make([]float64, 0, len(out.Labels))
	for _, l := range out.Labels {
		if l.Name == nil {
			continue
		}
		labels = append(labels, *l.Name)
		scores = append(scores, float64(aws.ToFloat32(l.Confidence))/100)
	}
	return topPrediction(labels, scores)
}
