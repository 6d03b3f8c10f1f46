package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"attendify_go/database"
	"attendify_go/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ReportArchiveService uploads exported report files to S3 and flushes
// Redis-cached activity logs into the database.
type ReportArchiveService struct {
	redisClient *redis.Client
	awsConfig   aws.Config
}

// NewReportArchiveService creates a new service instance
func NewReportArchiveService() *ReportArchiveService {
	cfg, err := awscfg.LoadDefaultConfig(context.Background(), awscfg.WithRegion(os.Getenv("AWS_REGION")))
	if err != nil {
		logrus.WithError(err).Warn("Failed to load AWS config; S3 operations will fail until configured")
	}

	return &ReportArchiveService{
		redisClient: database.GetRedisClient(),
		awsConfig:   cfg,
	}
}

// ArchiveReport uploads one exported report payload to S3 and records it in
// report_archives. Best-effort: a failed upload is recorded with status
// "failed" and returned as an error, but never blocks the export response.
func (ras *ReportArchiveService) ArchiveReport(filter *ReportFilter, fileName, format string, rowCount int, data []byte) (*models.ReportArchive, error) {
	now := time.Now()
	s3Key := fmt.Sprintf("reports/%d/%02d/%s_%s", now.Year(), now.Month(), uuid.New().String(), fileName)

	archive := models.ReportArchive{
		FileName:    fileName,
		S3Key:       s3Key,
		Format:      format,
		SubjectCode: filter.SubjectCode,
		Section:     filter.Section,
		FromDate:    filter.FromDate,
		ToDate:      filter.ToDate,
		RowCount:    rowCount,
		FileSize:    int64(len(data)),
		Status:      "pending",
	}
	if err := database.DB.Create(&archive).Error; err != nil {
		return nil, fmt.Errorf("failed to record report archive: %v", err)
	}

	contentType := "text/csv"
	if format == "xlsx" {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if err := ras.uploadToS3(s3Key, contentType, data); err != nil {
		database.DB.Model(&archive).Updates(map[string]interface{}{"status": "failed", "error": err.Error()})
		return nil, fmt.Errorf("failed to upload report to S3: %v", err)
	}

	if err := database.DB.Model(&archive).Update("status", "completed").Error; err != nil {
		logrus.WithError(err).Error("Failed to mark report archive completed")
	}
	archive.Status = "completed"

	logrus.WithFields(logrus.Fields{
		"s3_key":    s3Key,
		"file_size": archive.FileSize,
	}).Info("Report archived to S3")

	return &archive, nil
}

// GetArchivedReports retrieves the list of archived report files
func (ras *ReportArchiveService) GetArchivedReports() ([]models.ReportArchive, error) {
	var archives []models.ReportArchive

	err := database.DB.
		Order("created_at DESC").
		Find(&archives).Error

	if err != nil {
		return nil, fmt.Errorf("failed to retrieve archived reports: %v", err)
	}

	return archives, nil
}

// DownloadArchivedReport downloads a specific archive from S3
func (ras *ReportArchiveService) DownloadArchivedReport(archiveID uint) (io.ReadCloser, string, error) {
	var archive models.ReportArchive

	err := database.DB.First(&archive, archiveID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, "", fmt.Errorf("archive not found")
		}
		return nil, "", fmt.Errorf("failed to retrieve archive: %v", err)
	}

	reader, err := ras.downloadFromS3(archive.S3Key)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download archive from S3: %v", err)
	}

	return reader, archive.FileName, nil
}

// FlushCachedLogsToDatabase moves activity logs from Redis cache to database
func (ras *ReportArchiveService) FlushCachedLogsToDatabase() error {
	if ras.redisClient == nil {
		return fmt.Errorf("redis client not available")
	}

	ctx := context.Background()
	cutoffTime := time.Now().Add(-1 * time.Hour)

	// Get all queued logs older than the cutoff from the sorted set
	expiredLogs, err := ras.redisClient.ZRangeByScore(ctx, "logs:queue", &redis.ZRangeBy{
		Min: "0",
		Max: fmt.Sprintf("%d", cutoffTime.Unix()),
	}).Result()

	if err != nil {
		return fmt.Errorf("failed to get expired logs: %v", err)
	}

	var processedCount int
	var errorCount int

	for _, logKey := range expiredLogs {
		logData, err := ras.redisClient.Get(ctx, logKey).Result()
		if err != nil {
			if err != redis.Nil {
				logrus.WithError(err).Errorf("Failed to get log data for key: %s", logKey)
				errorCount++
			}
			continue
		}

		var activityLog models.ActivityLog
		if err := json.Unmarshal([]byte(logData), &activityLog); err != nil {
			logrus.WithError(err).Errorf("Failed to unmarshal log data for key: %s", logKey)
			errorCount++
			continue
		}

		if err := database.DB.Create(&activityLog).Error; err != nil {
			logrus.WithError(err).Errorf("Failed to save log to database: %v", activityLog)
			errorCount++
			continue
		}

		// Remove from cache and queue
		pipeline := ras.redisClient.Pipeline()
		pipeline.Del(ctx, logKey)
		pipeline.ZRem(ctx, "logs:queue", logKey)
		if _, err := pipeline.Exec(ctx); err != nil {
			logrus.WithError(err).Errorf("Failed to remove log from cache: %s", logKey)
		}

		processedCount++
	}

	if processedCount > 0 || errorCount > 0 {
		logrus.Infof("Flushed %d logs to database, %d errors", processedCount, errorCount)
	}
	return nil
}

// StartLogMaintenanceScheduler starts a background goroutine that flushes
// cached activity logs periodically.
func (ras *ReportArchiveService) StartLogMaintenanceScheduler() {
	go func() {
		// Run immediately once
		if err := ras.FlushCachedLogsToDatabase(); err != nil {
			logrus.WithError(err).Warn("initial FlushCachedLogsToDatabase failed")
		}

		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if err := ras.FlushCachedLogsToDatabase(); err != nil {
				logrus.WithError(err).Warn("periodic FlushCachedLogsToDatabase failed")
			}
		}
	}()
}

// uploadToS3 uploads data to the S3 bucket
func (ras *ReportArchiveService) uploadToS3(key, contentType string, data []byte) error {
	if ras.awsConfig.Region == "" {
		return fmt.Errorf("AWS not configured")
	}

	s3Client := s3.NewFromConfig(ras.awsConfig)
	bucketName := os.Getenv("S3_BUCKET_NAME")

	_, err := s3Client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket:      &bucketName,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})

	return err
}

// downloadFromS3 downloads a key from S3
func (ras *ReportArchiveService) downloadFromS3(key string) (io.ReadCloser, error) {
	if ras.awsConfig.Region == "" {
		return nil, fmt.Errorf("AWS not configured")
	}

	s3Client := s3.NewFromConfig(ras.awsConfig)
	bucketName := os.Getenv("S3_BUCKET_NAME")

	result, err := s3Client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: &bucketName,
		Key:    &key,
	})

	if err != nil {
		return nil, err
	}

	return result.Body, nil
}
