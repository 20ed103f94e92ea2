package email

import (
	"context"
	"fmt"
	"mime"
	"net/smtp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/safewatch/safewatch-analysis-service/internal/domain/entity"
	"github.com/safewatch/safewatch-analysis-service/internal/session"
)

type SMTPNotifier struct {
	host   string
	port   int
	from   string
	to     []string
	logger *zap.Logger
}

func NewSMTPNotifier(host string, port int, from string, to []string, logger *zap.Logger) *SMTPNotifier {
	return &SMTPNotifier{host: host, port: port, from: from, to: to, logger: logger}
}

func (n *SMTPNotifier) NotifyRisk(_ context.Context, event entity.RiskEvent) error {
	addr := fmt.Sprintf("%s:%d", n.host, n.port)

	err := smtp.SendMail(addr, nil, n.from, n.to, buildRiskMessage(n.from, n.to, event))
	if err != nil {
		n.logger.Error("failed to send risk alert email",
			zap.Strings("to", n.to),
			zap.String("session_id", event.SessionID),
			zap.Error(err),
		)
		return fmt.Errorf("send email: %w", err)
	}

	n.logger.Info("risk alert email sent",
		zap.Strings("to", n.to),
		zap.String("session_id", event.SessionID),
	)
	return nil
}

func buildRiskMessage(from string, to []string, event entity.RiskEvent) []byte {
	filename := session.StripControl(event.Filename)
	subject := mime.QEncoding.Encode("utf-8",
		fmt.Sprintf("SafeWatch - High risk detected in %s", filename))
	body := fmt.Sprintf(
		"Hello,\r\n\r\n"+
			"A video analysis was classified as high risk.\r\n\r\n"+
			"Video: %s\r\n"+
			"Finding: %s\r\n"+
			"Frames analyzed: %d\r\n"+
			"Detected at: %s\r\n"+
			"Session: %s\r\n\r\n"+
			"Please review the footage as soon as possible.\r\n\r\n"+
			"-- SafeWatch Analysis Service",
		filename, session.StripControl(event.Details), event.FrameCount,
		event.DetectedAt.UTC().Format(time.RFC3339), event.SessionID,
	)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n"+
		"MIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		from, strings.Join(to, ", "), subject, body,
	)
	return []byte(msg)
}
