package aws

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockS3 struct {
	PutObjectFunc func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

func (m *mockS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return m.PutObjectFunc(ctx, params, optFns...)
}

type mockRekognition struct {
	DetectTextFunc func(ctx context.Context, params *rekognition.DetectTextInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectTextOutput, error)
}

func (m *mockRekognition) DetectText(ctx context.Context, params *rekognition.DetectTextInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectTextOutput, error) {
	return m.DetectTextFunc(ctx, params, optFns...)
}

type mockSNS struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func (m *mockSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return m.PublishFunc(ctx, params, optFns...)
}

type mockSES struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

func (m *mockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	return m.SendEmailFunc(ctx, params, optFns...)
}

func TestS3BlobStore_Put(t *testing.T) {
	var got *s3.PutObjectInput
	var body []byte
	client := &mockS3{
		PutObjectFunc: func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			got = params
			body, _ = io.ReadAll(params.Body)
			return &s3.PutObjectOutput{}, nil
		},
	}

	store := NewS3BlobStoreWithClient(client, "listing-photos", "sa-east-1", "image/jpeg")
	require.NoError(t, store.Put(context.Background(), "2024-05-01/casa.jpg", []byte("jpeg")))

	assert.Equal(t, "listing-photos", aws.ToString(got.Bucket))
	assert.Equal(t, "2024-05-01/casa.jpg", aws.ToString(got.Key))
	assert.Equal(t, "image/jpeg", aws.ToString(got.ContentType))
	assert.Equal(t, []byte("jpeg"), body)
	assert.Equal(t, "listing-photos", store.Bucket())
}

func TestS3BlobStore_PutError(t *testing.T) {
	client := &mockS3{
		PutObjectFunc: func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			return nil, errors.New("access denied")
		},
	}

	err := NewS3BlobStoreWithClient(client, "b", "sa-east-1", "image/jpeg").Put(context.Background(), "k.jpg", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
	assert.Contains(t, err.Error(), "s3://b/k.jpg")
}

func TestS3BlobStore_PublicURL(t *testing.T) {
	store := NewS3BlobStoreWithClient(&mockS3{}, "fotos", "sa-east-1", "image/jpeg")
	assert.Equal(t, "https://fotos.s3.sa-east-1.amazonaws.com/2024-05-01/a.jpg", store.PublicURL("2024-05-01/a.jpg"))
}

func TestRekognitionTextDetector_DetectText(t *testing.T) {
	client := &mockRekognition{
		DetectTextFunc: func(ctx context.Context, params *rekognition.DetectTextInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectTextOutput, error) {
			assert.Equal(t, "bucket", aws.ToString(params.Image.S3Object.Bucket))
			assert.Equal(t, "2024-05-01/a.jpg", aws.ToString(params.Image.S3Object.Name))
			return &rekognition.DetectTextOutput{
				TextDetections: []types.TextDetection{
					{DetectedText: aws.String("VENDE"), Confidence: aws.Float32(99)},
					{DetectedText: aws.String("noise"), Confidence: aws.Float32(20)},
					{Confidence: aws.Float32(99)},
					{DetectedText: aws.String("123")},
				},
			}, nil
		},
	}

	texts, err := NewRekognitionTextDetectorWithClient(client, 50).DetectText(context.Background(), "bucket", "2024-05-01/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, []string{"VENDE", "123"}, texts)
}

func TestRekognitionTextDetector_Error(t *testing.T) {
	client := &mockRekognition{
		DetectTextFunc: func(ctx context.Context, params *rekognition.DetectTextInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectTextOutput, error) {
			return nil, errors.New("throttled")
		},
	}

	_, err := NewRekognitionTextDetectorWithClient(client, 0).DetectText(context.Background(), "b", "k")
	assert.ErrorContains(t, err, "throttled")
}

func TestSNSClient_Publish(t *testing.T) {
	client := &mockSNS{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			assert.Equal(t, "arn:aws:sns:sa-east-1:1:photos", aws.ToString(params.TopicArn))
			assert.Equal(t, "Nova foto", aws.ToString(params.Subject))
			assert.Equal(t, `{"a":1}`, aws.ToString(params.Message))
			return &sns.PublishOutput{MessageId: aws.String("msg-1")}, nil
		},
	}

	id, err := NewSNSClientWithAPI(client, "arn:aws:sns:sa-east-1:1:photos").Publish(context.Background(), "Nova foto", `{"a":1}`)
	require.NoError(t, err)
	assert.Equal(t, "msg-1", id)
}

func TestSESClient_SendEmail(t *testing.T) {
	client := &mockSES{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			assert.Equal(t, "noreply@example.com", aws.ToString(params.Source))
			assert.Equal(t, []string{"ops@example.com"}, params.Destination.ToAddresses)
			assert.Equal(t, "subject", aws.ToString(params.Message.Subject.Data))
			assert.Equal(t, "body", aws.ToString(params.Message.Body.Text.Data))
			return &ses.SendEmailOutput{MessageId: aws.String("id")}, nil
		},
	}

	err := NewSESClientWithAPI(client, "noreply@example.com").SendEmail(context.Background(), []string{"ops@example.com"}, "subject", "body")
	assert.NoError(t, err)
}
