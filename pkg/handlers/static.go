package handlers

import (
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

// StaticHandler serves the admin front-end from a directory on disk.
type StaticHandler struct {
	dir string
}

func NewStaticHandler(dir string) *StaticHandler {
	return &StaticHandler{dir: dir}
}

func (h *StaticHandler) Index(c *gin.Context) {
	h.serve(c, "index.html")
}

func (h *StaticHandler) Admin(c *gin.Context) {
	h.serve(c, "admin.html")
}

// Asset serves any other GET path relative to the front-end directory. It is
// meant to be installed as the router's NoRoute handler. Every unmatched path
// is an asset path, so other methods are answered with 405.
func (h *StaticHandler) Asset(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		MethodNotAllowed(c)
		return
	}
	h.serve(c, c.Request.URL.Path)
}

func (h *StaticHandler) serve(c *gin.Context, name string) {
	// cleaning against "/" drops any ".." that would climb out of dir
	full := filepath.Join(h.dir, filepath.FromSlash(path.Clean("/"+name)))

	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		requestLog(c).WithField("path", name).Debug("StaticHandler: Asset not found")
		c.JSON(http.StatusNotFound, errorResponse("Not found"))
		return
	}

	c.File(full)
}

func MethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, errorResponse("Method not allowed"))
}
