package http

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/ghoststack-shark/Katie-team-notetaker-backend/internal/config"
	"github.com/ghoststack-shark/Katie-team-notetaker-backend/internal/domain"
	"github.com/ghoststack-shark/Katie-team-notetaker-backend/internal/services"
	"github.com/ghoststack-shark/Katie-team-notetaker-backend/internal/storage"
)

type API struct {
	cfg       config.Config
	store     storage.MeetingStore
	artifacts *storage.ArtifactManager
	recall    *services.RecallService
	webhooks  *services.WebhookService
	summary   *services.SummaryService
	pdf       *services.PDFService
	share     *services.ShareService
}

func NewAPI(cfg config.Config, store storage.MeetingStore, artifacts *storage.ArtifactManager, recall *services.RecallService, webhooks *services.WebhookService, summary *services.SummaryService, pdf *services.PDFService, share *services.ShareService) *API {
	return &API{cfg: cfg, store: store, artifacts: artifacts, recall: recall, webhooks: webhooks, summary: summary, pdf: pdf, share: share}
}

func registerRoutes(r *gin.Engine, api *API) {
	r.GET("/health", api.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Pushed by the provider; it authenticates nothing.
	r.POST("/recall/webhook", api.handleRecallWebhook)

	// Signed expiring links, validated per request.
	r.GET("/transcripts/:meetingId", api.handleServeTranscriptPDF)

	secured := r.Group("", RequireSharedSecret(api.cfg.APISharedSecret))
	{
		secured.POST("/joinMeeting", api.handleJoinMeeting)
		secured.POST("/joinPhone", api.handleJoinPhone)
		secured.POST("/getTranscript", api.handleGetTranscript)
		secured.POST("/exportTranscript", api.handleExportTranscript)
		secured.POST("/summarizeMeeting", api.handleSummarizeMeeting)

		secured.GET("/meetings", api.handleListMeetings)
		secured.GET("/meetings/:meetingId", api.handleGetMeeting)
	}
}

func (a *API) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
}

func (a *API) handleJoinMeeting(c *gin.Context) {
	var payload struct {
		MeetingID string `json:"meetingId" binding:"required"`
		JoinURL   string `json:"joinUrl" binding:"required"`
		StartTime string `json:"startTime"`
		EndTime   string `json:"endTime"`
		Subject   string `json:"subject"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondMessage(c, http.StatusBadRequest, "meetingId and joinUrl are required")
		return
	}

	ctx := c.Request.Context()

	botID, err := a.recall.CreateBot(ctx, payload.JoinURL, payload.MeetingID, payload.Subject)
	if err != nil {
		log.Error().Err(err).Str("meeting_id", payload.MeetingID).Msg("create bot failed")
		respondProviderError(c, "failed to create recall bot", err)
		return
	}

	meeting, err := a.store.Find(ctx, payload.MeetingID)
	if errors.Is(err, storage.ErrMeetingNotFound) {
		meeting = domain.Meeting{MeetingID: payload.MeetingID}
	} else if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	meeting.Subject = payload.Subject
	meeting.JoinURL = payload.JoinURL
	meeting.StartTime = payload.StartTime
	meeting.EndTime = payload.EndTime
	meeting.Status = domain.StatusJoinRequested
	if meeting.RecallBotID == "" {
		meeting.RecallBotID = botID
	}

	meeting, err = a.store.Upsert(ctx, meeting)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":          true,
		"meetingId":   meeting.MeetingID,
		"recallBotId": meeting.RecallBotID,
	})
}

func (a *API) handleJoinPhone(c *gin.Context) {
	var payload struct {
		MeetingID    string `json:"meetingId" binding:"required"`
		PhoneNumber  string `json:"phoneNumber" binding:"required"`
		ConferenceID string `json:"conferenceId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondMessage(c, http.StatusBadRequest, "meetingId, phoneNumber and conferenceId are required")
		return
	}

	respondMessage(c, http.StatusNotImplemented, "phone dial-in is not implemented yet")
}

func (a *API) handleRecallWebhook(c *gin.Context) {
	var event map[string]any
	if err := c.ShouldBindJSON(&event); err != nil {
		// Still acknowledge: the provider retries on anything else and
		// a malformed body will not get better on redelivery.
		log.Warn().Err(err).Msg("unparseable webhook body")
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	// Acknowledge before processing so provider retries are decoupled
	// from lookup, mutation and forwarding latency.
	c.JSON(http.StatusOK, gin.H{"ok": true})

	go a.webhooks.Process(context.Background(), event)
}

func (a *API) handleGetTranscript(c *gin.Context) {
	var payload struct {
		MeetingID string `json:"meetingId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondMessage(c, http.StatusBadRequest, "meetingId is required")
		return
	}

	meeting, text, apiErr := a.loadTranscript(c.Request.Context(), payload.MeetingID)
	if apiErr != nil {
		apiErr.respond(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"meetingId":      meeting.MeetingID,
		"transcriptText": text,
		"quality":        services.TranscriptQuality(text),
		"recallBotId":    meeting.RecallBotID,
		"transcriptId":   meeting.TranscriptID,
	})
}

func (a *API) handleListMeetings(c *gin.Context) {
	meetings, err := a.store.List(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, meetings)
}

func (a *API) handleGetMeeting(c *gin.Context) {
	meeting, err := a.store.Find(c.Request.Context(), c.Param("meetingId"))
	if errors.Is(err, storage.ErrMeetingNotFound) {
		respondMessage(c, http.StatusNotFound, "meeting not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, meeting)
}

func (a *API) handleExportTranscript(c *gin.Context) {
	var payload struct {
		MeetingID string `json:"meetingId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondMessage(c, http.StatusBadRequest, "meetingId is required")
		return
	}

	meeting, text, apiErr := a.loadTranscript(c.Request.Context(), payload.MeetingID)
	if apiErr != nil {
		apiErr.respond(c)
		return
	}

	pdfPath := a.artifacts.PDFPath(meeting.MeetingID)
	if err := a.pdf.GeneratePDF(meeting, text, pdfPath); err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	url, expiresAt, err := a.share.Generate(meeting.MeetingID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"meetingId": meeting.MeetingID,
		"url":       url,
		"expiresAt": expiresAt.UTC(),
	})
}

func (a *API) handleSummarizeMeeting(c *gin.Context) {
	var payload struct {
		MeetingID    string `json:"meetingId" binding:"required"`
		Instructions string `json:"instructions"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondMessage(c, http.StatusBadRequest, "meetingId is required")
		return
	}

	meeting, text, apiErr := a.loadTranscript(c.Request.Context(), payload.MeetingID)
	if apiErr != nil {
		apiErr.respond(c)
		return
	}

	summary, err := a.summary.Summarize(c.Request.Context(), text, payload.Instructions)
	if err != nil {
		log.Error().Err(err).Str("meeting_id", meeting.MeetingID).Msg("summary failed")
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"meetingId": meeting.MeetingID, "summary": summary})
}

func (a *API) handleServeTranscriptPDF(c *gin.Context) {
	meetingID := c.Param("meetingId")
	expiresParam := c.Query("exp")
	signature := c.Query("sig")

	if expiresParam == "" || signature == "" {
		respondMessage(c, http.StatusBadRequest, "missing signature")
		return
	}

	expires, err := strconv.ParseInt(expiresParam, 10, 64)
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "invalid expiration")
		return
	}

	if expires < time.Now().Unix() {
		respondMessage(c, http.StatusGone, "link expired")
		return
	}

	path := c.Request.URL.Path
	if !a.share.Validate(path, expires, signature) {
		respondMessage(c, http.StatusForbidden, "invalid signature")
		return
	}

	pdfPath := a.artifacts.PDFPath(meetingID)
	if _, err := os.Stat(pdfPath); err != nil {
		respondMessage(c, http.StatusNotFound, "transcript pdf not found")
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.FileAttachment(pdfPath, filepath.Base(pdfPath))
}

// loadTranscript resolves the meeting, fetches the bot detail from the
// provider, downloads the pre-signed transcript artifact and normalizes it.
// A newly discovered transcript id is persisted along the way.
func (a *API) loadTranscript(ctx context.Context, meetingID string) (domain.Meeting, string, *apiError) {
	meeting, err := a.store.Find(ctx, meetingID)
	if errors.Is(err, storage.ErrMeetingNotFound) || (err == nil && meeting.RecallBotID == "") {
		return domain.Meeting{}, "", &apiError{
			status:  http.StatusNotFound,
			message: "No Recall bot mapped for this meetingId yet",
		}
	}
	if err != nil {
		return domain.Meeting{}, "", &apiError{status: http.StatusInternalServerError, message: err.Error()}
	}

	bot, err := a.recall.GetBot(ctx, meeting.RecallBotID)
	if err != nil {
		return domain.Meeting{}, "", providerAPIError("failed to fetch bot details", err)
	}

	downloadURL := services.TranscriptDownloadURL(bot)
	if downloadURL == "" {
		return domain.Meeting{}, "", &apiError{
			status:  http.StatusNotFound,
			message: "Transcript not ready for this meeting yet",
			details: "the bot recording has no transcript download location",
		}
	}

	payload, err := a.recall.DownloadTranscript(ctx, downloadURL)
	if err != nil {
		return domain.Meeting{}, "", providerAPIError("failed to download transcript", err)
	}

	text := services.NormalizeTranscript(payload)

	if transcriptID := services.TranscriptArtifactID(bot); transcriptID != "" && transcriptID != meeting.TranscriptID {
		meeting.TranscriptID = transcriptID
		if meeting, err = a.store.Upsert(ctx, meeting); err != nil {
			return domain.Meeting{}, "", &apiError{status: http.StatusInternalServerError, message: err.Error()}
		}
	}

	return meeting, text, nil
}

type apiError struct {
	status  int
	message string
	details string
}

func (e *apiError) respond(c *gin.Context) {
	body := gin.H{"error": e.message}
	if e.details != "" {
		body["details"] = e.details
	}
	c.JSON(e.status, body)
}

func providerAPIError(message string, err error) *apiError {
	out := &apiError{status: http.StatusInternalServerError, message: message, details: err.Error()}

	var providerErr *services.ProviderError
	if errors.As(err, &providerErr) {
		out.details = providerErr.Body
	}
	return out
}

func respondProviderError(c *gin.Context, message string, err error) {
	providerAPIError(message, err).respond(c)
}

func respondError(c *gin.Context, status int, err error) {
	respondMessage(c, status, err.Error())
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
