package router

import (
	"os"
	"runtime"
	"time"

	"ws-chatt/backend/chat/repository"

	"github.com/gin-gonic/gin"
)

// setupHealthRoutes registers health check endpoints
func (r *Router) setupHealthRoutes() {
	healthHandler := func(c *gin.Context) {
		// Probe the store; a missing snapshot is still a healthy store
		storeStatus := "ok"
		if _, err := r.Container.Store.Get(repository.SnapshotKey); err != nil && err != repository.ErrNotFound {
			storeStatus = err.Error()
			r.Logger.Error("Store health check failed", "error", err)
		}

		// Get memory stats
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		// Prepare response
		c.JSON(200, gin.H{
			"status":    "ok",
			"version":   os.Getenv("APP_VERSION"),
			"timestamp": time.Now().Format(time.RFC3339),
			"components": gin.H{
				"store": storeStatus,
				"websocket": gin.H{
					"status":             "ok",
					"active_connections": r.Hub.ClientCount(),
				},
			},
			"memory": gin.H{
				"alloc_mb":  memStats.Alloc / 1024 / 1024,
				"sys_mb":    memStats.Sys / 1024 / 1024,
				"gc_cycles": memStats.NumGC,
			},
		})
	}

	// Register both health endpoint paths for compatibility
	r.Engine.GET("/health", healthHandler)
	r.Engine.GET("/api/health", healthHandler)
}
