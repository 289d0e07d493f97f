package notify

import (
	"fmt"
	"log"
	"strings"
	"time"

	"broker-notify/internal/catalog"
	"broker-notify/internal/config"
	"broker-notify/internal/documents"
	"broker-notify/internal/metrics"
	"broker-notify/internal/whapi"
)

// Caps on sequential sends, to stay under the gateway's anti-spam limits.
const (
	maxImagesMulti = 5
	maxImagesMixed = 4
	maxPDFsMixed   = 3
	maxPDFsMulti   = 5
)

// Dispatcher turns a status change or document upload into one or more
// WhatsApp messages. Stateless; one instance is shared by all callers.
type Dispatcher struct {
	Client     *whapi.Client
	SiteURL    string
	FooterText string
	// SendDelay is the pause between sequential sends.
	SendDelay time.Duration
}

func NewDispatcher(client *whapi.Client, cfg *config.Config) *Dispatcher {
	return &Dispatcher{
		Client:     client,
		SiteURL:    strings.TrimRight(cfg.SiteURL, "/"),
		FooterText: cfg.CompanyName,
		SendDelay:  cfg.SendDelay,
	}
}

// StatusChangeRequest is the inbound payload for a status-change notification.
type StatusChangeRequest struct {
	Phone        string               `json:"phone"`
	CustomerName string               `json:"customer_name"`
	OrderNumber  string               `json:"order_number" binding:"required"`
	OrderID      string               `json:"order_id" binding:"required"`
	VehicleName  string               `json:"vehicle_name"`
	NewStatus    string               `json:"new_status" binding:"required"`
	Documents    []documents.Document `json:"documents,omitempty"`
	ETA          string               `json:"eta,omitempty"`
	Language     catalog.Language     `json:"language,omitempty"`
}

// DocumentRequest is the inbound payload when documents are added to an
// order outside of a status change.
type DocumentRequest struct {
	Phone        string               `json:"phone"`
	CustomerName string               `json:"customer_name"`
	OrderNumber  string               `json:"order_number" binding:"required"`
	OrderID      string               `json:"order_id" binding:"required"`
	Documents    []documents.Document `json:"documents" binding:"required"`
	Language     catalog.Language     `json:"language,omitempty"`
}

// SendResult is the aggregate outcome of one logical notification.
type SendResult struct {
	Success      bool   `json:"success"`
	MessageID    string `json:"message_id,omitempty"`
	Error        string `json:"error,omitempty"`
	MessagesSent int    `json:"messages_sent"`
}

// --- Send Jobs ---

// A sendAttempt is one way of delivering a job's content. Attempts are tried
// in order until one succeeds; later attempts are plain-text fallbacks.
type sendAttempt struct {
	kind string
	send func() (*whapi.SendResponse, error)
}

type sendJob struct {
	attempts []sendAttempt
}

// runJobs executes jobs sequentially, pausing SendDelay between them.
// A job counts as sent when any of its attempts succeeds. Failures are
// absorbed into the result, never raised.
func (d *Dispatcher) runJobs(jobs []sendJob) SendResult {
	var result SendResult

	for i, job := range jobs {
		if i > 0 && d.SendDelay > 0 {
			time.Sleep(d.SendDelay)
		}

		delivered := false
		var lastErr string
		for _, attempt := range job.attempts {
			resp, err := attempt.send()
			switch {
			case err != nil:
				lastErr = err.Error()
			case resp == nil || !resp.Sent:
				lastErr = resp.ErrorMessage()
				if lastErr == "" {
					lastErr = "gateway did not accept message"
				}
			default:
				if result.MessageID == "" {
					result.MessageID = resp.MessageID()
				}
				metrics.GatewayMessagesTotal.WithLabelValues(attempt.kind, "sent").Inc()
				delivered = true
			}
			if delivered {
				break
			}
			metrics.GatewayMessagesTotal.WithLabelValues(attempt.kind, "failed").Inc()
			log.Printf("whapi %s send failed: %s", attempt.kind, lastErr)
		}

		if delivered {
			result.MessagesSent++
		} else if result.Error == "" {
			result.Error = lastErr
		}
	}

	result.Success = result.MessagesSent > 0
	return result
}

func (d *Dispatcher) interactiveJob(to, bodyText, buttonText, buttonID, buttonURL string) sendJob {
	return sendJob{attempts: []sendAttempt{
		{kind: "interactive", send: func() (*whapi.SendResponse, error) {
			return d.Client.SendInteractiveMessage(to, bodyText, d.FooterText, buttonText, buttonID, buttonURL)
		}},
		{kind: "text", send: func() (*whapi.SendResponse, error) {
			return d.Client.SendTextMessage(to, bodyText+"\n\n"+buttonURL)
		}},
	}}
}

func (d *Dispatcher) imageJob(to string, doc documents.Document, caption string) sendJob {
	return sendJob{attempts: []sendAttempt{
		{kind: "image", send: func() (*whapi.SendResponse, error) {
			return d.Client.SendImageMessage(to, doc.URL, caption)
		}},
		{kind: "text", send: func() (*whapi.SendResponse, error) {
			return d.Client.SendTextMessage(to, caption+"\n"+doc.URL)
		}},
	}}
}

func (d *Dispatcher) documentJob(to string, doc documents.Document, caption string) sendJob {
	return sendJob{attempts: []sendAttempt{
		{kind: "document", send: func() (*whapi.SendResponse, error) {
			return d.Client.SendDocumentMessage(to, doc.URL, doc.Name, caption)
		}},
		{kind: "text", send: func() (*whapi.SendResponse, error) {
			return d.Client.SendTextMessage(to, caption+"\n"+doc.URL)
		}},
	}}
}

// --- Entry Points ---

// SendStatusChangeNotification notifies a customer that their order moved to
// a new status, attaching visible documents according to the status config.
func (d *Dispatcher) SendStatusChangeNotification(req StatusChangeRequest) SendResult {
	if d.Client == nil || d.Client.Token == "" {
		return SendResult{Error: "WHAPI_TOKEN not configured"}
	}

	to, err := NormalizePhone(req.Phone)
	if err != nil {
		return SendResult{Error: err.Error()}
	}

	statusCfg, ok := catalog.GetStatusMessageConfig(req.NewStatus)
	if !ok {
		return SendResult{Error: fmt.Sprintf("no message configured for status %q", req.NewStatus)}
	}

	classified := documents.Classify(req.Documents)
	if !statusCfg.IncludeDocuments {
		classified = documents.Classified{}
	}

	lang := normalizeLanguage(req.Language)
	msg := catalog.GetStatusMessage(req.NewStatus, d.messageParams(req, classified), lang)
	body := composeBody(*msg)
	dashboardURL := d.dashboardURL(req.OrderID)

	jobs := d.buildStatusJobs(to, body, *msg, classified, dashboardURL)
	result := d.runJobs(jobs)
	log.Printf("status notification %s for order %s: sent %d/%d messages",
		req.NewStatus, req.OrderNumber, result.MessagesSent, len(jobs))
	return result
}

// SendDocumentNotification notifies a customer that new documents were added
// to their order, without a status change.
func (d *Dispatcher) SendDocumentNotification(req DocumentRequest) SendResult {
	if d.Client == nil || d.Client.Token == "" {
		return SendResult{Error: "WHAPI_TOKEN not configured"}
	}

	to, err := NormalizePhone(req.Phone)
	if err != nil {
		return SendResult{Error: err.Error()}
	}

	classified := documents.Classify(req.Documents)
	if classified.Total() == 0 {
		return SendResult{Error: "no documents visible to the customer"}
	}

	lang := normalizeLanguage(req.Language)
	visible := classified.Visible()
	params := catalog.MessageParams{
		CustomerName:  req.CustomerName,
		OrderNumber:   req.OrderNumber,
		DocumentNames: documentNames(visible),
		DocumentURLs:  documentURLs(visible),
		DashboardURL:  d.dashboardURL(req.OrderID),
	}
	msg := catalog.DocumentsAddedMessage(params, lang)
	body := composeBody(msg)
	dashboardURL := d.dashboardURL(req.OrderID)

	var jobs []sendJob
	images, pdfs, links := classified.Images, classified.PDFs, classified.Links
	switch {
	case len(images) == 1 && len(pdfs) == 0 && len(links) == 0:
		jobs = []sendJob{d.imageJob(to, images[0], body)}
	case len(pdfs) == 1 && len(images) == 0 && len(links) == 0:
		jobs = []sendJob{d.documentJob(to, pdfs[0], body)}
	default:
		jobs = append(jobs, d.interactiveJob(to, body, msg.ButtonText, "view_documents", dashboardURL))
		jobs = append(jobs, d.imageJobs(to, images, maxImagesMixed)...)
		jobs = append(jobs, d.documentJobs(to, pdfs, maxPDFsMixed)...)
	}

	result := d.runJobs(jobs)
	log.Printf("document notification for order %s: sent %d/%d messages",
		req.OrderNumber, result.MessagesSent, len(jobs))
	return result
}

// buildStatusJobs is the strategy decision tree over classified counts.
func (d *Dispatcher) buildStatusJobs(to, body string, msg catalog.StatusMessage, c documents.Classified, dashboardURL string) []sendJob {
	images, pdfs, links := c.Images, c.PDFs, c.Links

	switch {
	case c.Total() == 0:
		return []sendJob{d.interactiveJob(to, body, msg.ButtonText, "view_order", dashboardURL)}

	case len(images) == 1 && len(pdfs) == 0:
		// Photo first, then the button message so the CTA is the last thing seen.
		return []sendJob{
			d.imageJob(to, images[0], imageCaption(images[0], msg)),
			d.interactiveJob(to, body, msg.ButtonText, "view_order", dashboardURL),
		}

	case len(pdfs) == 1 && len(images) == 0:
		return []sendJob{d.documentJob(to, pdfs[0], body)}

	case len(links) == 1 && len(images) == 0 && len(pdfs) == 0:
		return []sendJob{d.interactiveJob(to, body, msg.ButtonText, "open_link", links[0].URL)}

	case len(images) > 1:
		jobs := []sendJob{d.interactiveJob(to, body, msg.ButtonText, "view_order", dashboardURL)}
		jobs = append(jobs, d.imageJobs(to, images, maxImagesMulti)...)
		jobs = append(jobs, d.documentJobs(to, pdfs, maxPDFsMixed)...)
		return jobs

	case len(pdfs) > 1:
		jobs := []sendJob{d.interactiveJob(to, body, msg.ButtonText, "view_order", dashboardURL)}
		jobs = append(jobs, d.documentJobs(to, pdfs, maxPDFsMulti)...)
		return jobs

	default:
		jobs := []sendJob{d.interactiveJob(to, body, msg.ButtonText, "view_order", dashboardURL)}
		jobs = append(jobs, d.imageJobs(to, images, maxImagesMixed)...)
		jobs = append(jobs, d.documentJobs(to, pdfs, maxPDFsMixed)...)
		return jobs
	}
}

func (d *Dispatcher) imageJobs(to string, images []documents.Document, limit int) []sendJob {
	if len(images) > limit {
		images = images[:limit]
	}
	jobs := make([]sendJob, 0, len(images))
	for _, img := range images {
		jobs = append(jobs, d.imageJob(to, img, img.Name))
	}
	return jobs
}

func (d *Dispatcher) documentJobs(to string, pdfs []documents.Document, limit int) []sendJob {
	if len(pdfs) > limit {
		pdfs = pdfs[:limit]
	}
	jobs := make([]sendJob, 0, len(pdfs))
	for _, pdf := range pdfs {
		jobs = append(jobs, d.documentJob(to, pdf, pdf.Name))
	}
	return jobs
}

// --- Helpers ---

func (d *Dispatcher) dashboardURL(orderID string) string {
	return fmt.Sprintf("%s/dashboard/orders/%s", d.SiteURL, orderID)
}

func (d *Dispatcher) messageParams(req StatusChangeRequest, c documents.Classified) catalog.MessageParams {
	visible := c.Visible()
	return catalog.MessageParams{
		CustomerName:  req.CustomerName,
		OrderNumber:   req.OrderNumber,
		VehicleName:   req.VehicleName,
		DocumentNames: documentNames(visible),
		DocumentURLs:  documentURLs(visible),
		DashboardURL:  d.dashboardURL(req.OrderID),
		ETA:           req.ETA,
	}
}

func normalizeLanguage(lang catalog.Language) catalog.Language {
	if lang == catalog.English {
		return catalog.English
	}
	return catalog.French
}

func composeBody(msg catalog.StatusMessage) string {
	return fmt.Sprintf("%s *%s*\n\n%s", msg.Emoji, msg.Title, msg.Message)
}

func imageCaption(doc documents.Document, msg catalog.StatusMessage) string {
	if doc.Name != "" {
		return doc.Name
	}
	return msg.Title
}

func documentNames(docs []documents.Document) []string {
	names := make([]string, 0, len(docs))
	for _, d := range docs {
		names = append(names, d.Name)
	}
	return names
}

func documentURLs(docs []documents.Document) []string {
	urls := make([]string, 0, len(docs))
	for _, d := range docs {
		urls = append(urls, d.URL)
	}
	return urls
}
