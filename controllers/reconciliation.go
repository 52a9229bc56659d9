package controllers

import (
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"

	"CareSync360/services"
	"CareSync360/store"
)

// Handler exposes the reconciliation engine over HTTP for the dashboard. All
// routes are read-only except the fix endpoints, which delegate to the
// reconciler.
type Handler struct {
	Appointments services.AppointmentSource
	Verifier     *services.Verifier
	Reconciler   *services.Reconciler
	Reporter     *services.Reporter
	Monitor      *services.Monitor
	ReportDir    string
}

func Reconciliation(c *gin.Engine, h *Handler) {
	reconciliation := c.Group("reconciliation")
	{
		reconciliation.GET("/reports/latest", h.LatestReport)
		reconciliation.POST("/reports/generate", h.GenerateReport)
		reconciliation.GET("/monitor", h.MonitorRecent)
		reconciliation.POST("/run", h.ReconcileAll)
	}
	appointment := c.Group("appointments")
	{
		appointment.GET("/verify/:appointmentId", h.VerifyAppointment)
		appointment.POST("/fix/:appointmentId", h.FixAppointment)
	}
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

/*
* Find the newest persisted report artifact
* Stream it back verbatim
 */
func (h *Handler) LatestReport(c *gin.Context) {
	path, err := services.LatestReportPath(h.ReportDir)
	if err != nil {
		c.JSON(http.StatusInternalServerError, FailedResponse(err))
		return
	}
	if path == "" {
		c.JSON(http.StatusNotFound, FailedResponse(errors.New("no report generated yet")))
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		c.JSON(http.StatusInternalServerError, FailedResponse(err))
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

/*
* Run a full scan, persist the artifact
* Return the report inline
 */
func (h *Handler) GenerateReport(c *gin.Context) {
	report, err := h.Reporter.Generate(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, FailedResponse(err))
		return
	}
	if _, err := h.Reporter.Persist(report); err != nil {
		c.JSON(http.StatusInternalServerError, FailedResponse(err))
		return
	}
	c.JSON(http.StatusOK, SuccessResponse(report))
}

/*
* Read the day count from the query (default 7)
* Run the windowed check, diagnostics only
 */
func (h *Handler) MonitorRecent(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", strconv.Itoa(services.DefaultMonitorDays)))
	if err != nil || days < 1 {
		c.JSON(http.StatusBadRequest, FailedResponse(errors.New("days must be a positive integer")))
		return
	}
	stats, err := h.Monitor.Recent(c.Request.Context(), days)
	if err != nil {
		c.JSON(http.StatusBadGateway, FailedResponse(err))
		return
	}
	c.JSON(http.StatusOK, SuccessResponse(stats))
}

/*
* Fetch the appointment and classify its user link
 */
func (h *Handler) VerifyAppointment(c *gin.Context) {
	id := c.Param("appointmentId")
	appt, err := h.Appointments.GetByID(c.Request.Context(), id)
	if err != nil {
		status := http.StatusBadGateway
		if !errors.Is(err, store.ErrStoreUnavailable) {
			status = http.StatusInternalServerError
		}
		c.JSON(status, FailedResponse(err))
		return
	}
	if appt == nil {
		c.JSON(http.StatusNotFound, FailedResponse(errors.New("appointment not found")))
		return
	}
	verification, err := h.Verifier.Verify(c.Request.Context(), *appt)
	if err != nil {
		c.JSON(http.StatusBadGateway, FailedResponse(err))
		return
	}
	c.JSON(http.StatusOK, SuccessResponse(verification))
}

/*
* Reconcile a single appointment
* Per-record failures come back as a failed FixResult, not an HTTP error
 */
func (h *Handler) FixAppointment(c *gin.Context) {
	result, err := h.Reconciler.Reconcile(c.Request.Context(), c.Param("appointmentId"))
	if err != nil {
		c.JSON(http.StatusBadGateway, FailedResponse(err))
		return
	}
	c.JSON(http.StatusOK, SuccessResponse(result))
}

/*
* Sweep the whole collection, fixing what can be fixed
 */
func (h *Handler) ReconcileAll(c *gin.Context) {
	result, err := h.Reconciler.ReconcileAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, FailedResponse(err))
		return
	}
	c.JSON(http.StatusOK, SuccessResponse(result))
}
