package notify

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"broker-notify/internal/catalog"
	"broker-notify/internal/documents"
	"broker-notify/internal/whapi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gatewayCall struct {
	Path string
	Body map[string]interface{}
}

// fakeGateway stands in for the Whapi REST API and records every send.
type fakeGateway struct {
	mu     sync.Mutex
	calls  []gatewayCall
	reject map[string]bool
	seq    int
	srv    *httptest.Server
}

func newFakeGateway(t *testing.T) *fakeGateway {
	t.Helper()
	g := &fakeGateway{reject: map[string]bool{}}
	g.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"sent":  false,
				"error": map[string]interface{}{"message": "unauthorized"},
			})
			return
		}

		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)

		g.mu.Lock()
		g.calls = append(g.calls, gatewayCall{Path: r.URL.Path, Body: body})
		g.seq++
		id := fmt.Sprintf("msg-%d", g.seq)
		rejected := g.reject[r.URL.Path]
		g.mu.Unlock()

		if rejected {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"sent":  false,
				"error": map[string]interface{}{"message": "rate limited"},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"sent":    true,
			"message": map[string]interface{}{"id": id},
		})
	}))
	t.Cleanup(g.srv.Close)
	return g
}

func (g *fakeGateway) dispatcher() *Dispatcher {
	client := &whapi.Client{
		Token:      "test-token",
		BaseURL:    g.srv.URL,
		HTTPClient: g.srv.Client(),
	}
	return &Dispatcher{
		Client:     client,
		SiteURL:    "https://app.example.com",
		FooterText: "Gabon Auto Import",
		SendDelay:  0,
	}
}

func (g *fakeGateway) paths() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	paths := make([]string, len(g.calls))
	for i, c := range g.calls {
		paths[i] = c.Path
	}
	return paths
}

func (g *fakeGateway) call(i int) gatewayCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[i]
}

func interactiveText(t *testing.T, call gatewayCall) string {
	t.Helper()
	body, ok := call.Body["body"].(map[string]interface{})
	require.True(t, ok, "interactive payload missing body object")
	text, _ := body["text"].(string)
	return text
}

func interactiveButtonURL(t *testing.T, call gatewayCall) string {
	t.Helper()
	action, ok := call.Body["action"].(map[string]interface{})
	require.True(t, ok, "interactive payload missing action")
	buttons, ok := action["buttons"].([]interface{})
	require.True(t, ok)
	require.Len(t, buttons, 1)
	button := buttons[0].(map[string]interface{})
	url, _ := button["url"].(string)
	return url
}

func statusRequest(status string, docs []documents.Document) StatusChangeRequest {
	return StatusChangeRequest{
		Phone:        "+24177123456",
		CustomerName: "Jean Mabiala",
		OrderNumber:  "CMD-2024-042",
		OrderID:      "ord-42",
		VehicleName:  "Toyota Land Cruiser",
		NewStatus:    status,
		Documents:    docs,
	}
}

func image(name string) documents.Document {
	return documents.Document{Name: name, URL: "https://cdn.example.com/" + name + ".jpg"}
}

func pdf(name string) documents.Document {
	return documents.Document{Name: name, URL: "https://cdn.example.com/" + name + ".pdf"}
}

func link(name string) documents.Document {
	return documents.Document{Name: name, URL: "https://track.example.com/" + name, Type: "url"}
}

func boolPtr(b bool) *bool { return &b }

func TestPlainStatusNotification(t *testing.T) {
	g := newFakeGateway(t)
	d := g.dispatcher()

	result := d.SendStatusChangeNotification(statusRequest("deposit_paid", nil))

	require.True(t, result.Success, "error: %s", result.Error)
	assert.Equal(t, 1, result.MessagesSent)
	assert.Equal(t, "msg-1", result.MessageID)
	require.Equal(t, []string{"/messages/interactive"}, g.paths())

	call := g.call(0)
	text := interactiveText(t, call)
	assert.Contains(t, text, "CMD-2024-042")
	assert.NotContains(t, text, "Documents joints")
	assert.Equal(t, "https://app.example.com/dashboard/orders/ord-42", interactiveButtonURL(t, call))
	assert.Equal(t, "24177123456@s.whatsapp.net", call.Body["to"])
}

func TestDocumentsIgnoredWhenStatusDoesNotIncludeThem(t *testing.T) {
	g := newFakeGateway(t)
	d := g.dispatcher()

	result := d.SendStatusChangeNotification(statusRequest("deposit_paid", []documents.Document{
		image("front"), pdf("invoice"),
	}))

	require.True(t, result.Success)
	require.Equal(t, []string{"/messages/interactive"}, g.paths())
	assert.NotContains(t, interactiveText(t, g.call(0)), "Documents joints")
}

func TestSingleImageStrategy(t *testing.T) {
	g := newFakeGateway(t)
	d := g.dispatcher()

	result := d.SendStatusChangeNotification(statusRequest("vehicle_found", []documents.Document{
		image("front"),
	}))

	require.True(t, result.Success)
	assert.Equal(t, 2, result.MessagesSent)
	assert.Equal(t, []string{"/messages/image", "/messages/interactive"}, g.paths())
}

func TestInvisibleImageExcluded(t *testing.T) {
	g := newFakeGateway(t)
	d := g.dispatcher()

	docs := []documents.Document{
		image("front"),
		{Name: "internal", URL: "https://cdn.example.com/internal.jpg", VisibleToClient: boolPtr(false)},
	}
	result := d.SendStatusChangeNotification(statusRequest("vehicle_locked", docs))

	require.True(t, result.Success)
	// One visible image: image then button message, not three sends.
	assert.Equal(t, []string{"/messages/image", "/messages/interactive"}, g.paths())
	assert.Equal(t, 2, result.MessagesSent)
}

func TestSinglePDFStrategy(t *testing.T) {
	g := newFakeGateway(t)
	d := g.dispatcher()

	result := d.SendStatusChangeNotification(statusRequest("inspection_completed", []documents.Document{
		pdf("rapport-inspection"),
	}))

	require.True(t, result.Success)
	require.Equal(t, []string{"/messages/document"}, g.paths())
	call := g.call(0)
	assert.Equal(t, "rapport-inspection", call.Body["filename"])
	caption, _ := call.Body["caption"].(string)
	assert.Contains(t, caption, "CMD-2024-042")
}

func TestSingleLinkStrategy(t *testing.T) {
	g := newFakeGateway(t)
	d := g.dispatcher()

	result := d.SendStatusChangeNotification(statusRequest("customs_clearance", []documents.Document{
		link("suivi-douane"),
	}))

	require.True(t, result.Success)
	require.Equal(t, []string{"/messages/interactive"}, g.paths())
	assert.Equal(t, "https://track.example.com/suivi-douane", interactiveButtonURL(t, g.call(0)))
}

func TestMultiImageStrategy(t *testing.T) {
	g := newFakeGateway(t)
	d := g.dispatcher()

	result := d.SendStatusChangeNotification(statusRequest("vehicle_found", []documents.Document{
		image("front"), image("back"), image("interior"),
	}))

	require.True(t, result.Success)
	// Intro plus the three available images.
	assert.Equal(t, []string{
		"/messages/interactive",
		"/messages/image",
		"/messages/image",
		"/messages/image",
	}, g.paths())
	assert.Equal(t, 4, result.MessagesSent)
}

func TestMultiImageCaps(t *testing.T) {
	g := newFakeGateway(t)
	d := g.dispatcher()

	var docs []documents.Document
	for i := 0; i < 7; i++ {
		docs = append(docs, image(fmt.Sprintf("photo-%d", i)))
	}
	for i := 0; i < 4; i++ {
		docs = append(docs, pdf(fmt.Sprintf("doc-%d", i)))
	}

	result := d.SendStatusChangeNotification(statusRequest("vehicle_found", docs))

	require.True(t, result.Success)
	// Intro + 5 images (capped) + 3 PDFs (capped).
	assert.Equal(t, 9, result.MessagesSent)
	assert.Len(t, g.paths(), 9)
}

func TestMultiPDFStrategy(t *testing.T) {
	g := newFakeGateway(t)
	d := g.dispatcher()

	result := d.SendStatusChangeNotification(statusRequest("shipping", []documents.Document{
		pdf("connaissement"), pdf("assurance"), pdf("facture"),
	}))

	require.True(t, result.Success)
	assert.Equal(t, []string{
		"/messages/interactive",
		"/messages/document",
		"/messages/document",
		"/messages/document",
	}, g.paths())
}

func TestMultiPDFCap(t *testing.T) {
	g := newFakeGateway(t)
	d := g.dispatcher()

	var docs []documents.Document
	for i := 0; i < 7; i++ {
		docs = append(docs, pdf(fmt.Sprintf("doc-%d", i)))
	}

	result := d.SendStatusChangeNotification(statusRequest("shipping", docs))

	require.True(t, result.Success)
	// Intro + 5 PDFs (capped).
	assert.Equal(t, 6, result.MessagesSent)
}

func TestMixedStrategy(t *testing.T) {
	g := newFakeGateway(t)
	d := g.dispatcher()

	result := d.SendStatusChangeNotification(statusRequest("arrived", []documents.Document{
		image("remise-cles"), pdf("quitus-douane"),
	}))

	require.True(t, result.Success)
	assert.Equal(t, []string{
		"/messages/interactive",
		"/messages/image",
		"/messages/document",
	}, g.paths())
}

func TestImageFallsBackToText(t *testing.T) {
	g := newFakeGateway(t)
	g.reject["/messages/image"] = true
	d := g.dispatcher()

	result := d.SendStatusChangeNotification(statusRequest("vehicle_found", []documents.Document{
		image("front"),
	}))

	// Image send rejected by the gateway, text fallback carries the URL.
	require.Equal(t, []string{"/messages/image", "/messages/text", "/messages/interactive"}, g.paths())
	textBody, _ := g.call(1).Body["body"].(string)
	assert.Contains(t, textBody, "https://cdn.example.com/front.jpg")
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.MessagesSent)
}

func TestAllAttemptsFailing(t *testing.T) {
	g := newFakeGateway(t)
	g.reject["/messages/interactive"] = true
	g.reject["/messages/text"] = true
	d := g.dispatcher()

	result := d.SendStatusChangeNotification(statusRequest("deposit_paid", nil))

	assert.False(t, result.Success)
	assert.Equal(t, 0, result.MessagesSent)
	assert.NotEmpty(t, result.Error)
}

func TestMissingTokenShortCircuits(t *testing.T) {
	g := newFakeGateway(t)
	d := g.dispatcher()
	d.Client.Token = ""

	result := d.SendStatusChangeNotification(statusRequest("deposit_paid", nil))

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "WHAPI_TOKEN")
	assert.Empty(t, g.paths())
}

func TestMissingPhoneShortCircuits(t *testing.T) {
	g := newFakeGateway(t)
	d := g.dispatcher()

	req := statusRequest("deposit_paid", nil)
	req.Phone = "  "
	result := d.SendStatusChangeNotification(req)

	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
	assert.Empty(t, g.paths())
}

func TestUnknownStatusShortCircuits(t *testing.T) {
	g := newFakeGateway(t)
	d := g.dispatcher()

	result := d.SendStatusChangeNotification(statusRequest("warp_drive", nil))

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "warp_drive")
	assert.Empty(t, g.paths())
}

func TestEnglishLanguage(t *testing.T) {
	g := newFakeGateway(t)
	d := g.dispatcher()

	req := statusRequest("delivered", nil)
	req.Language = catalog.English
	result := d.SendStatusChangeNotification(req)

	require.True(t, result.Success)
	assert.Contains(t, interactiveText(t, g.call(0)), "Congratulations")
}

func documentRequest(docs []documents.Document) DocumentRequest {
	return DocumentRequest{
		Phone:        "077123456",
		CustomerName: "Jean Mabiala",
		OrderNumber:  "CMD-2024-042",
		OrderID:      "ord-42",
		Documents:    docs,
	}
}

func TestDocumentNotificationSingleImage(t *testing.T) {
	g := newFakeGateway(t)
	d := g.dispatcher()

	result := d.SendDocumentNotification(documentRequest([]documents.Document{image("carte-grise")}))

	require.True(t, result.Success)
	require.Equal(t, []string{"/messages/image"}, g.paths())
	caption, _ := g.call(0).Body["caption"].(string)
	assert.Contains(t, caption, "CMD-2024-042")
	assert.Equal(t, "24177123456@s.whatsapp.net", g.call(0).Body["to"])
}

func TestDocumentNotificationSinglePDF(t *testing.T) {
	g := newFakeGateway(t)
	d := g.dispatcher()

	result := d.SendDocumentNotification(documentRequest([]documents.Document{pdf("facture")}))

	require.True(t, result.Success)
	assert.Equal(t, []string{"/messages/document"}, g.paths())
}

func TestDocumentNotificationMulti(t *testing.T) {
	g := newFakeGateway(t)
	d := g.dispatcher()

	result := d.SendDocumentNotification(documentRequest([]documents.Document{
		image("a"), image("b"), pdf("c"),
	}))

	require.True(t, result.Success)
	assert.Equal(t, []string{
		"/messages/interactive",
		"/messages/image",
		"/messages/image",
		"/messages/document",
	}, g.paths())
}

func TestDocumentNotificationNothingVisible(t *testing.T) {
	g := newFakeGateway(t)
	d := g.dispatcher()

	result := d.SendDocumentNotification(documentRequest([]documents.Document{
		{Name: "internal", URL: "https://x/internal.pdf", VisibleToClient: boolPtr(false)},
	}))

	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
	assert.Empty(t, g.paths())
}
