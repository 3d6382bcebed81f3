package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// newFeedHandler builds the read-only guidance feed. External consumers
// (dashboard, alert panel) poll it for the same Path/sensor data the
// displays render; nothing here mutates the pipeline.
func newFeedHandler(e *Engine) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, e.Snapshot())
	})
	r.GET("/path", func(c *gin.Context) {
		snap := e.Snapshot()
		if snap.Path == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no path currently available"})
			return
		}
		c.JSON(http.StatusOK, snap.Path)
	})
	return r
}

func startFeedServer(addr string, e *Engine) *http.Server {
	s := &http.Server{Addr: addr, Handler: newFeedHandler(e)}
	go func() {
		if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("feed server: %v", err)
		}
	}()
	log.Infof("guidance feed listening at %v", addr)
	return s
}
