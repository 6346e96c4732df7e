package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"log"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hibiken/asynq"
	"github.com/nfnt/resize"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/config"
	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/email"
	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/models"
	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/services"
)

// Task types handled by the background worker.
const (
	TypeEmailDelivery = "email:deliver"
	TypeBannerProcess = "banner:process"
	TypeExpireSweep   = "sweep:expire"
	TypeClickFlush    = "clicks:flush"
)

// --- Task Client (Enqueuing tasks) ---

// Client wraps the queue client behind the enqueue operations the API uses.
type Client struct {
	client *asynq.Client
}

// NewClient creates a queue client over the shared Redis connection.
func NewClient(rdb *redis.Client) *Client {
	clientOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}
	return &Client{client: asynq.NewClient(clientOpt)}
}

// Close releases the underlying queue connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// EmailTaskPayload is the payload of an email delivery task.
type EmailTaskPayload struct {
	To        string                 `json:"to"`
	EmailType models.EmailType       `json:"email_type"`
	Data      map[string]interface{} `json:"data"`
}

// EnqueueEmail queues one transactional email for delivery.
func (c *Client) EnqueueEmail(ctx context.Context, to string, emailType models.EmailType, data map[string]interface{}) error {
	payload, err := json.Marshal(EmailTaskPayload{To: to, EmailType: emailType, Data: data})
	if err != nil {
		return fmt.Errorf("failed to marshal email task payload: %w", err)
	}
	task := asynq.NewTask(TypeEmailDelivery, payload)
	if _, err := c.client.EnqueueContext(ctx, task, asynq.Queue("default"), asynq.MaxRetry(5)); err != nil {
		return fmt.Errorf("failed to enqueue email task: %w", err)
	}
	return nil
}

// BannerTaskPayload is the payload of a banner normalization task.
type BannerTaskPayload struct {
	S3Key string `json:"s3_key"`
	AdID  string `json:"ad_id"`
}

// EnqueueBannerProcess queues normalization of a freshly uploaded banner.
func (c *Client) EnqueueBannerProcess(ctx context.Context, s3Key, adID string) error {
	payload, err := json.Marshal(BannerTaskPayload{S3Key: s3Key, AdID: adID})
	if err != nil {
		return fmt.Errorf("failed to marshal banner task payload: %w", err)
	}
	task := asynq.NewTask(TypeBannerProcess, payload)
	if _, err := c.client.EnqueueContext(ctx, task, asynq.Queue("images"), asynq.MaxRetry(3)); err != nil {
		return fmt.Errorf("failed to enqueue banner task: %w", err)
	}
	return nil
}

// --- Task Server (Processing tasks) ---

// TaskProcessor holds the dependencies the task handlers need.
type TaskProcessor struct {
	cfg                  *config.Config
	emailSender          email.Sender
	emailTemplateService services.IEmailTemplateService
	adService            services.IAdService
	sweepService         services.ISweepService
	clickService         services.IClickService
	s3Client             *s3.Client
}

func NewTaskProcessor(
	cfg *config.Config,
	emailSender email.Sender,
	emailTemplateService services.IEmailTemplateService,
	adService services.IAdService,
	sweepService services.ISweepService,
	clickService services.IClickService,
	s3Client *s3.Client,
) *TaskProcessor {
	return &TaskProcessor{
		cfg:                  cfg,
		emailSender:          emailSender,
		emailTemplateService: emailTemplateService,
		adService:            adService,
		sweepService:         sweepService,
		clickService:         clickService,
		s3Client:             s3Client,
	}
}

// SetupServer configures an Asynq server and its handler mux, or nil in API
// mode where no worker runs. The caller runs srv.Run(mux).
func SetupServer(rdb *redis.Client, processor *TaskProcessor, isBgWorker bool) (*asynq.Server, *asynq.ServeMux) {
	if !isBgWorker {
		log.Println("Running in API mode, no task server started.")
		return nil, nil
	}

	serverOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}

	srv := asynq.NewServer(
		serverOpt,
		asynq.Config{
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
				"images":   5,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Printf("[Asynq Error] Task Type: %s, Payload: %s, Error: %v", task.Type(), string(task.Payload()), err)
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeEmailDelivery, processor.HandleEmailDeliveryTask)
	mux.HandleFunc(TypeBannerProcess, processor.HandleBannerProcessTask)
	mux.HandleFunc(TypeExpireSweep, processor.HandleExpireSweepTask)
	mux.HandleFunc(TypeClickFlush, processor.HandleClickFlushTask)
	log.Println("Registered background task handlers.")

	return srv, mux
}

// SetupScheduler registers the periodic tasks and returns the started
// scheduler. Schedules are cron specs or @every intervals from configuration.
func SetupScheduler(rdb *redis.Client, cfg *config.Config) *asynq.Scheduler {
	schedulerOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}
	scheduler := asynq.NewScheduler(schedulerOpt, &asynq.SchedulerOpts{Location: time.UTC})

	if _, err := scheduler.Register(cfg.SweepSchedule, asynq.NewTask(TypeExpireSweep, nil), asynq.Queue("low")); err != nil {
		log.Fatalf("Could not register expiration sweep schedule %q: %v", cfg.SweepSchedule, err)
	}
	if _, err := scheduler.Register(cfg.ClickFlushSchedule, asynq.NewTask(TypeClickFlush, nil), asynq.Queue("low")); err != nil {
		log.Fatalf("Could not register click flush schedule %q: %v", cfg.ClickFlushSchedule, err)
	}

	if err := scheduler.Start(); err != nil {
		log.Fatalf("Could not start Asynq scheduler: %v", err)
	}
	return scheduler
}

// --- Task Handlers ---

// HandleEmailDeliveryTask renders one of the fixed transactional templates and
// hands the raw message to the configured sender.
func (p *TaskProcessor) HandleEmailDeliveryTask(ctx context.Context, t *asynq.Task) error {
	var payload EmailTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal email task payload: %v: %w", err, asynq.SkipRetry)
	}

	tmpl, err := p.emailTemplateService.GetTemplate(ctx, payload.EmailType)
	if err != nil {
		log.Printf("Error getting email template %s: %v", payload.EmailType, err)
		return fmt.Errorf("email template not found: %w", asynq.SkipRetry)
	}

	// Simple placeholder replacement (replace {{.key}})
	subjectRendered := tmpl.Subject
	bodyRendered := tmpl.Body
	data := payload.Data
	if data == nil {
		data = map[string]interface{}{}
	}
	if _, ok := data["app_name"]; !ok {
		data["app_name"] = p.cfg.AppName
	}
	for key, val := range data {
		placeholder := fmt.Sprintf("{{.%s}}", key)
		valueStr := fmt.Sprintf("%v", val)
		subjectRendered = strings.ReplaceAll(subjectRendered, placeholder, valueStr)
		bodyRendered = strings.ReplaceAll(bodyRendered, placeholder, valueStr)
	}

	fromAddress := p.cfg.SmtpFromAddress
	if fromAddress == "" {
		fromAddress = "noreply@example.com"
		log.Printf("Warning: SmtpFromAddress not configured, using fallback %s for email to %s", fromAddress, payload.To)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("To: %s\r\n", payload.To))
	sb.WriteString(fmt.Sprintf("From: %s\r\n", fromAddress))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", subjectRendered))
	sb.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(bodyRendered)
	sb.WriteString("\r\n")

	if err := p.emailSender.Send(ctx, []string{payload.To}, subjectRendered, []byte(sb.String())); err != nil {
		log.Printf("Email sending failed for %s: %v", payload.To, err)
		return err
	}

	log.Printf("Email task processed: To=%s, Type=%s", payload.To, payload.EmailType)
	return nil
}

// HandleBannerProcessTask normalizes an uploaded ad banner: size check,
// downscale to the configured maximum dimension, re-upload and attach to the
// advertisement.
func (p *TaskProcessor) HandleBannerProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload BannerTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal banner task payload: %v: %w", err, asynq.SkipRetry)
	}

	adID, err := primitive.ObjectIDFromHex(payload.AdID)
	if err != nil {
		log.Printf("Invalid AdID in banner task payload: %s", payload.AdID)
		return fmt.Errorf("invalid ad ID in payload: %w", asynq.SkipRetry)
	}

	getObjectOutput, err := p.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.cfg.AwsS3Bucket),
		Key:    aws.String(payload.S3Key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			log.Printf("S3 object %s not found, likely upload failed or key incorrect.", payload.S3Key)
			return fmt.Errorf("s3 object not found: %w", asynq.SkipRetry)
		}
		return fmt.Errorf("failed to download banner from S3: %w", err)
	}
	defer getObjectOutput.Body.Close()

	imgData, err := io.ReadAll(getObjectOutput.Body)
	if err != nil {
		return fmt.Errorf("failed to read banner data: %w", err)
	}

	maxSizeBytes := int64(p.cfg.BannerMaxSizeMB) * 1024 * 1024
	if int64(len(imgData)) > maxSizeBytes {
		log.Printf("Banner %s exceeds max size (%d > %d bytes). Skipping.", payload.S3Key, len(imgData), maxSizeBytes)
		return fmt.Errorf("banner exceeds max size: %w", asynq.SkipRetry)
	}

	img, format, err := image.Decode(bytes.NewReader(imgData))
	if err != nil {
		log.Printf("Error decoding banner %s: %v", payload.S3Key, err)
		return fmt.Errorf("unsupported image format or corrupt image: %w", asynq.SkipRetry)
	}
	log.Printf("Decoded banner %s, format: %s, size: %dx%d", payload.S3Key, format, img.Bounds().Dx(), img.Bounds().Dy())

	maxDim := uint(p.cfg.BannerMaxDimension)
	needsResize := uint(img.Bounds().Dx()) > maxDim || uint(img.Bounds().Dy()) > maxDim

	processedData := imgData
	contentType := aws.ToString(getObjectOutput.ContentType)

	if needsResize {
		resized := resize.Thumbnail(maxDim, maxDim, img, resize.Lanczos3)
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 85}); err != nil {
			return fmt.Errorf("failed to re-encode resized banner: %w", err)
		}
		processedData = buf.Bytes()
		contentType = "image/jpeg"
		log.Printf("Resized banner %s to %dx%d", payload.S3Key, resized.Bounds().Dx(), resized.Bounds().Dy())

		if int64(len(processedData)) > maxSizeBytes {
			return fmt.Errorf("resized banner still exceeds max size: %w", asynq.SkipRetry)
		}
	}

	_, err = p.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.cfg.AwsS3Bucket),
		Key:         aws.String(payload.S3Key),
		Body:        bytes.NewReader(processedData),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload processed banner: %w", err)
	}

	if err := p.adService.SetBanner(ctx, adID, payload.S3Key); err != nil {
		return fmt.Errorf("failed to attach banner to ad: %w", err)
	}

	log.Printf("Banner task processed: Key=%s, AdID=%s", payload.S3Key, payload.AdID)
	return nil
}

// HandleExpireSweepTask runs the expiration pass. The pass only matches
// documents still needing deactivation, so overlapping runs are harmless.
func (p *TaskProcessor) HandleExpireSweepTask(ctx context.Context, t *asynq.Task) error {
	result, err := p.sweepService.Run(ctx)
	if err != nil {
		return fmt.Errorf("expiration sweep failed: %w", err)
	}
	log.Printf("Scheduled sweep done: %d documents deactivated", result.Total())
	return nil
}

// HandleClickFlushTask drains accumulated click counters into the store.
func (p *TaskProcessor) HandleClickFlushTask(ctx context.Context, t *asynq.Task) error {
	applied, err := p.clickService.Flush(ctx)
	if err != nil {
		return fmt.Errorf("click flush failed: %w", err)
	}
	if applied > 0 {
		log.Printf("Click flush applied %d clicks", applied)
	}
	return nil
}
