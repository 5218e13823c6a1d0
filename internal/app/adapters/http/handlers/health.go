package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
)

func (h *Handlers) HealthHandler(c *gin.Context) {
	resp := gin.H{"status": "ok"}

	if percent, err := cpu.Percent(0, false); err == nil && len(percent) > 0 {
		resp["cpu_percent"] = percent[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		resp["mem_used_percent"] = vm.UsedPercent
	}

	c.JSON(http.StatusOK, resp)
}
