package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/matahariann/kontrakgen/model"
	"github.com/matahariann/kontrakgen/pkg/logger"
	"github.com/matahariann/kontrakgen/service"
	"github.com/matahariann/kontrakgen/wizard"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// WizardHandler exposes the step flow over HTTP. Archive is optional; when
// present every generated document is also uploaded to object storage.
type WizardHandler struct {
	wizard  *wizard.Wizard
	archive *service.ArchiveService
}

func NewWizardHandler(w *wizard.Wizard, archive *service.ArchiveService) *WizardHandler {
	return &WizardHandler{wizard: w, archive: archive}
}

// stepScope tags the request context with the step a route operates on,
// so log lines emitted below the handler carry the wizard_step field.
func stepScope(step wizard.Step) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.WithValue(c.Request.Context(), logger.StepKey, step.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RegisterRoutes mounts the wizard surface under the given group.
func (h *WizardHandler) RegisterRoutes(g *gin.RouterGroup) {
	g.GET("", h.State)
	g.POST("/next", h.Next)
	g.POST("/prev", h.Prev)
	g.POST("/reset", h.Reset)

	v := g.Group("", stepScope(wizard.StepVendor))
	v.PUT("/vendor", h.UpdateVendor)
	v.POST("/vendor/submit", h.SubmitVendor)
	v.POST("/vendor/edit", h.EditVendor)
	v.DELETE("/vendor", h.CancelVendor)

	o := g.Group("", stepScope(wizard.StepOfficial))
	o.PUT("/official/:index", h.UpdateOfficial)
	o.POST("/official/rows", h.AddOfficialRow)
	o.DELETE("/official/rows/:index", h.RemoveOfficialRow)
	o.POST("/official/submit", h.SubmitOfficials)
	o.POST("/official/edit", h.EditOfficials)
	o.GET("/periode", h.Periods)
	o.POST("/periode/select", h.SelectPeriode)

	d := g.Group("", stepScope(wizard.StepDocument))
	d.PUT("/document", h.UpdateDocument)
	d.POST("/document/submit", h.SubmitDocument)
	d.POST("/document/edit", h.EditDocument)

	k := g.Group("", stepScope(wizard.StepContract))
	k.PUT("/contract/:index", h.UpdateContract)
	k.POST("/contract/rows", h.AddContractRow)
	k.DELETE("/contract/rows/:index", h.RemoveContractRow)
	k.POST("/contract/submit", h.SubmitContracts)
	k.POST("/contract/edit", h.EditContracts)

	g.POST("/generate", h.Generate)
}

// State returns everything a client needs to render the wizard.
func (h *WizardHandler) State(c *gin.Context) {
	statuses := make(map[string]wizard.Status, 4)
	for s := wizard.StepVendor; s <= wizard.StepContract; s++ {
		statuses[s.String()] = h.wizard.StepState(s).Status()
	}

	resp := gin.H{
		"current_step": h.wizard.CurrentStep().String(),
		"statuses":     statuses,
		"vendor":       h.wizard.Vendor(),
		"officials":    h.wizard.Officials(),
		"periode":      h.wizard.Periode(),
		"document":     h.wizard.Document(),
		"contracts":    h.wizard.Contracts(),
	}
	if n := h.wizard.ActiveNotice(); n != nil {
		resp["notice"] = n
	}
	c.JSON(http.StatusOK, resp)
}

func (h *WizardHandler) Next(c *gin.Context) {
	if err := h.wizard.Next(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"current_step": h.wizard.CurrentStep().String()})
}

func (h *WizardHandler) Prev(c *gin.Context) {
	if err := h.wizard.Prev(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"current_step": h.wizard.CurrentStep().String()})
}

func (h *WizardHandler) Reset(c *gin.Context) {
	if err := h.wizard.Reset(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sesi dimulai ulang"})
}

func (h *WizardHandler) UpdateVendor(c *gin.Context) {
	var v model.Vendor
	if err := c.ShouldBindJSON(&v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Format data vendor tidak valid"})
		return
	}
	if err := h.wizard.UpdateVendor(v); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vendor": h.wizard.Vendor()})
}

func (h *WizardHandler) SubmitVendor(c *gin.Context) {
	if err := h.wizard.SubmitVendor(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vendor": h.wizard.Vendor(), "notice": h.wizard.ActiveNotice()})
}

func (h *WizardHandler) EditVendor(c *gin.Context) {
	if err := h.wizard.EditVendor(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": h.wizard.StepState(wizard.StepVendor).Status()})
}

func (h *WizardHandler) CancelVendor(c *gin.Context) {
	if err := h.wizard.CancelVendor(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vendor": h.wizard.Vendor()})
}

func (h *WizardHandler) UpdateOfficial(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Indeks baris tidak valid"})
		return
	}
	var o model.Official
	if err := c.ShouldBindJSON(&o); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Format data pejabat tidak valid"})
		return
	}
	if err := h.wizard.UpdateOfficial(index, o); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"officials": h.wizard.Officials()})
}

func (h *WizardHandler) AddOfficialRow(c *gin.Context) {
	if err := h.wizard.AddOfficialRow(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"officials": h.wizard.Officials()})
}

func (h *WizardHandler) RemoveOfficialRow(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Indeks baris tidak valid"})
		return
	}
	if err := h.wizard.RemoveOfficialRow(index); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"officials": h.wizard.Officials()})
}

func (h *WizardHandler) SubmitOfficials(c *gin.Context) {
	if err := h.wizard.SubmitOfficials(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"officials": h.wizard.Officials(), "notice": h.wizard.ActiveNotice()})
}

func (h *WizardHandler) EditOfficials(c *gin.Context) {
	if err := h.wizard.EditOfficials(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": h.wizard.StepState(wizard.StepOfficial).Status()})
}

func (h *WizardHandler) Periods(c *gin.Context) {
	periods, err := h.wizard.Periods(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"periode": periods, "selected": h.wizard.Periode()})
}

func (h *WizardHandler) SelectPeriode(c *gin.Context) {
	var req struct {
		Periode string `json:"periode"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Format pilihan periode tidak valid"})
		return
	}
	if err := h.wizard.SelectPeriode(c.Request.Context(), req.Periode); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"periode":   h.wizard.Periode(),
		"officials": h.wizard.Officials(),
		"status":    h.wizard.StepState(wizard.StepOfficial).Status(),
	})
}

func (h *WizardHandler) UpdateDocument(c *gin.Context) {
	var d model.Document
	if err := c.ShouldBindJSON(&d); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Format data dokumen tidak valid"})
		return
	}
	if err := h.wizard.UpdateDocument(d); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"document": h.wizard.Document()})
}

func (h *WizardHandler) SubmitDocument(c *gin.Context) {
	if err := h.wizard.SubmitDocument(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"document": h.wizard.Document(), "notice": h.wizard.ActiveNotice()})
}

func (h *WizardHandler) EditDocument(c *gin.Context) {
	if err := h.wizard.EditDocument(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": h.wizard.StepState(wizard.StepDocument).Status()})
}

func (h *WizardHandler) UpdateContract(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Indeks baris tidak valid"})
		return
	}
	var k model.Contract
	if err := c.ShouldBindJSON(&k); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Format data kontrak tidak valid"})
		return
	}
	if err := h.wizard.UpdateContract(index, k); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contracts": h.wizard.Contracts()})
}

func (h *WizardHandler) AddContractRow(c *gin.Context) {
	if err := h.wizard.AddContractRow(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contracts": h.wizard.Contracts()})
}

func (h *WizardHandler) RemoveContractRow(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Indeks baris tidak valid"})
		return
	}
	if err := h.wizard.RemoveContractRow(c.Request.Context(), index); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contracts": h.wizard.Contracts()})
}

func (h *WizardHandler) SubmitContracts(c *gin.Context) {
	results, err := h.wizard.SubmitContracts(c.Request.Context())
	if err != nil {
		if results == nil {
			respondError(c, err)
			return
		}
		// Attempted rows are reported alongside the error so the client
		// can show which ones already went through.
		c.JSON(errorStatus(err), gin.H{"error": err.Error(), "results": results})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"results":   results,
		"contracts": h.wizard.Contracts(),
		"notice":    h.wizard.ActiveNotice(),
	})
}

func (h *WizardHandler) EditContracts(c *gin.Context) {
	if err := h.wizard.EditContracts(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": h.wizard.StepState(wizard.StepContract).Status()})
}

type generateRequest struct {
	Filename  string `json:"filename"`
	Confirmed bool   `json:"confirmed"`
}

// Generate streams the compiled document as a download. The first call
// without confirmation gets the destructive-action warning and changes
// nothing; a confirmed call that succeeds ends the session.
func (h *WizardHandler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Format permintaan tidak valid"})
		return
	}

	if !req.Confirmed {
		c.JSON(http.StatusConflict, gin.H{"warning": wizard.GenerateWarning})
		return
	}

	name, data, err := h.wizard.Generate(c.Request.Context(), req.Filename)
	if err != nil {
		respondError(c, err)
		return
	}

	if h.archive != nil {
		ctx := c.Request.Context()
		if object, aerr := h.archive.StoreDocument(ctx, name, data); aerr != nil {
			// The user still gets the download; only the copy failed.
			logger.Warn(ctx, "failed to archive generated document", "filename", name, "error", aerr)
		} else {
			logger.Info(ctx, "document archived", "object", object)
		}
	}

	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, docxContentType, data)
}
