package controllers

import (
	"io"

	"attendify_go/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ArchiveController struct{}

// GetArchives lists archived report exports (Admin only)
func (ac *ArchiveController) GetArchives(c *fiber.Ctx) error {
	archives, err := services.NewReportArchiveService().GetArchivedReports()
	if err != nil {
		logrus.WithError(err).Error("Failed to list report archives")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve archives",
		})
	}

	return c.JSON(fiber.Map{"archives": archives})
}

// DownloadArchive streams one archived report back from S3 (Admin only)
func (ac *ArchiveController) DownloadArchive(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid archive ID"})
	}

	reader, fileName, err := services.NewReportArchiveService().DownloadArchivedReport(uint(id))
	if err != nil {
		if err.Error() == "archive not found" {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Archive not found"})
		}
		logrus.WithError(err).Error("Failed to download report archive")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to download archive",
		})
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read archive contents",
		})
	}

	c.Set("Content-Disposition", "attachment; filename="+fileName)
	return c.Send(data)
}
