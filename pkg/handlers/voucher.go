package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/medreza/honcho-voucher-service/pkg/middleware"
	"github.com/medreza/honcho-voucher-service/pkg/models"
	"github.com/medreza/honcho-voucher-service/pkg/service"
	"github.com/sirupsen/logrus"
)

const uploadField = "file"

type VoucherService interface {
	Check(ctx context.Context, code string) (models.CheckResult, error)
	AddOrReplace(ctx context.Context, req models.AddVoucherRequest) error
	BulkReplace(ctx context.Context, r io.Reader) (models.UploadSummary, error)
	ListAll(ctx context.Context) ([]models.Voucher, error)
}

type VoucherHandler struct {
	svc VoucherService
}

func NewVoucherHandler(svc VoucherService) *VoucherHandler {
	return &VoucherHandler{svc: svc}
}

// requestLog returns a log entry tagged with the request ID assigned by the
// request logger, when one is installed.
func requestLog(c *gin.Context) *logrus.Entry {
	if id := middleware.GetRequestID(c); id != "" {
		return logrus.WithField("request_id", id)
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

func errorResponse(msg string) models.StatusResponse {
	return models.StatusResponse{Status: "error", Error: msg}
}

func (h *VoucherHandler) CheckVoucher(c *gin.Context) {
	code := c.Param("code")

	result, err := h.svc.Check(c.Request.Context(), code)
	if err != nil {
		requestLog(c).WithField("code", code).WithError(err).Error("CheckVoucher: Failed to check voucher")
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to check voucher"))
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *VoucherHandler) AddVoucher(c *gin.Context) {
	var req models.AddVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		requestLog(c).WithField("error", err).Warn("AddVoucher: Invalid request body")
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request body: "+err.Error()))
		return
	}

	if err := h.svc.AddOrReplace(c.Request.Context(), req); err != nil {
		log := requestLog(c).WithField("code", req.Code)
		if service.IsInputError(err) {
			log.WithField("error", err).Warn("AddVoucher: Invalid voucher")
			c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
		log.WithError(err).Error("AddVoucher: Failed to store voucher")
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to store voucher"))
		return
	}

	c.JSON(http.StatusOK, models.StatusResponse{Status: "success"})
}

func (h *VoucherHandler) UploadVouchers(c *gin.Context) {
	header, err := c.FormFile(uploadField)
	if err != nil {
		requestLog(c).WithField("error", err).Warn("UploadVouchers: No file supplied")
		c.JSON(http.StatusBadRequest, models.StatusResponse{Status: "error"})
		return
	}

	file, err := header.Open()
	if err != nil {
		requestLog(c).WithField("filename", header.Filename).WithError(err).Error("UploadVouchers: Failed to open upload")
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to read upload"))
		return
	}
	defer file.Close()

	summary, err := h.svc.BulkReplace(c.Request.Context(), file)
	log := requestLog(c).WithFields(logrus.Fields{
		"filename": header.Filename,
		"applied":  summary.Applied,
		"skipped":  summary.Skipped,
	})
	if err != nil {
		log.WithError(err).Error("UploadVouchers: Failed to store vouchers")
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to store vouchers"))
		return
	}
	log.Info("UploadVouchers: Upload processed")

	c.JSON(http.StatusOK, models.UploadResponse{Status: "uploaded", UploadSummary: summary})
}

func (h *VoucherHandler) ListVouchers(c *gin.Context) {
	vouchers, err := h.svc.ListAll(c.Request.Context())
	if err != nil {
		requestLog(c).WithError(err).Error("ListVouchers: Failed to list vouchers")
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to list vouchers"))
		return
	}

	rows := make([][]any, 0, len(vouchers))
	for _, v := range vouchers {
		rows = append(rows, v.Tuple())
	}
	c.JSON(http.StatusOK, rows)
}
