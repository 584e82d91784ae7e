package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/medreza/honcho-voucher-service/pkg/config"
	"github.com/medreza/honcho-voucher-service/pkg/handlers"
	"github.com/medreza/honcho-voucher-service/pkg/middleware"
)

func NewRouter(cfg config.Config, svc handlers.VoucherService) *gin.Engine {
	voucherHandler := handlers.NewVoucherHandler(svc)
	staticHandler := handlers.NewStaticHandler(cfg.Server.FrontendDir)

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.NewCORSMiddleware(cfg.CORS))
	router.Use(middleware.RequestLogger())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/check/:code", voucherHandler.CheckVoucher)
	router.POST("/add", voucherHandler.AddVoucher)
	router.POST("/upload", voucherHandler.UploadVouchers)
	router.GET("/all", voucherHandler.ListVouchers)

	router.GET("/", staticHandler.Index)
	router.GET("/admin", staticHandler.Admin)
	router.NoRoute(staticHandler.Asset)
	router.NoMethod(handlers.MethodNotAllowed)

	return router
}
