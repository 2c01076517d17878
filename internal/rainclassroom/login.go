package rainclassroom

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/mdp/qrterminal/v3"

	"lessonvault/internal/catalog"
	"lessonvault/internal/logging"
)

// QRLogin authenticates interactively: the platform pushes a QR code over a
// websocket, the user scans it, and the socket reports the login credentials
// which are exchanged for a session cookie.
type QRLogin struct {
	Host    string
	Out     io.Writer
	Timeout time.Duration
	Logger  *slog.Logger
	// SocketURL overrides the websocket endpoint derived from Host.
	SocketURL string
}

var _ catalog.SessionProvider = QRLogin{}

type loginRequest struct {
	Op      string  `json:"op"`
	Role    string  `json:"role"`
	Version float64 `json:"version"`
	Type    string  `json:"type"`
	From    string  `json:"from"`
}

type loginMessage struct {
	QRCode          string          `json:"qrcode"`
	SubscribeStatus json.RawMessage `json:"subscribe_status"`
	UserID          json.RawMessage `json:"UserID"`
	Auth            string          `json:"Auth"`
}

// Authenticate runs the QR flow and returns a session holding the new cookie.
func (q QRLogin) Authenticate(ctx context.Context) (catalog.Session, error) {
	logger := logging.NewComponentLogger(q.Logger, "login")
	client, origin, err := newJarClient(q.Host, q.Timeout)
	if err != nil {
		return catalog.Session{}, err
	}

	socketURL := q.SocketURL
	if socketURL == "" {
		socketURL = strings.Replace(origin.String(), "http", "ws", 1) + "/wsapp/"
	}
	creds, err := q.awaitScan(ctx, socketURL, logger)
	if err != nil {
		return catalog.Session{}, err
	}

	base := origin.String()
	if err := exchange(ctx, client, http.MethodGet, base+"/v/course_meta/user_info", nil); err != nil {
		return catalog.Session{}, err
	}
	body, err := json.Marshal(map[string]any{"UserID": creds.UserID, "Auth": creds.Auth})
	if err != nil {
		return catalog.Session{}, fmt.Errorf("encode login: %w", err)
	}
	if err := exchange(ctx, client, http.MethodPost, base+"/pc/web_login", body); err != nil {
		return catalog.Session{}, err
	}

	for _, cookie := range client.Jar.Cookies(origin) {
		if cookie.Name == sessionCookie && cookie.Value != "" {
			logger.Info("login succeeded", logging.String(logging.FieldEventType, "login_complete"))
			return catalog.Session{Client: client, Token: cookie.Value}, nil
		}
	}
	return catalog.Session{}, fmt.Errorf("login did not return a session cookie: %w", ErrUnauthorized)
}

func (q QRLogin) awaitScan(ctx context.Context, socketURL string, logger *slog.Logger) (loginMessage, error) {
	conn, _, err := websocket.Dial(ctx, socketURL, nil)
	if err != nil {
		return loginMessage{}, fmt.Errorf("connect login socket: %w", err)
	}
	defer conn.CloseNow()

	request := loginRequest{Op: "requestlogin", Role: "web", Version: 1.4, Type: "qrcode", From: "web"}
	if err := wsjson.Write(ctx, conn, request); err != nil {
		return loginMessage{}, fmt.Errorf("request login: %w", err)
	}

	out := q.Out
	if out == nil {
		out = io.Discard
	}
	for {
		var msg loginMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if ctx.Err() != nil {
				return loginMessage{}, ctx.Err()
			}
			return loginMessage{}, fmt.Errorf("read login socket: %w", err)
		}
		if len(msg.SubscribeStatus) > 0 {
			_ = conn.Close(websocket.StatusNormalClosure, "")
			if len(msg.UserID) == 0 || msg.Auth == "" {
				return loginMessage{}, errors.New("login socket returned no credentials")
			}
			return msg, nil
		}
		if msg.QRCode != "" {
			logger.Debug("login qr code received")
			fmt.Fprint(out, "\033c")
			qrterminal.GenerateHalfBlock(msg.QRCode, qrterminal.L, out)
			fmt.Fprintln(out, "Scan the QR code with WeChat to log in")
		}
	}
}

func exchange(ctx context.Context, client *http.Client, method, endpoint string, body []byte) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s returned %d", method, endpoint, resp.StatusCode)
	}
	return nil
}
