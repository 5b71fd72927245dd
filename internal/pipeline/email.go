// =============================================================================
// email.go - メール通知モジュール
// =============================================================================
//
// このファイルはGmail SMTPを使用したメール送信機能を提供します。
// 公開レポート（今日のページが出たか、デフォルトに落ちたか）と、
// Lambda実行時のエラー通知に使用されます。
//
// =============================================================================
// 【必要な環境変数】
// =============================================================================
//
//   EMAIL_FROM     - 送信元メールアドレス（Gmail）
//   EMAIL_PASSWORD - Gmailアプリパスワード（通常のパスワードではない！）
//   EMAIL_TO       - 送信先メールアドレス（カンマ区切りで複数可）
//
// =============================================================================
// 【Gmailアプリパスワードについて】
// =============================================================================
//
// Googleアカウントの2段階認証を有効にした上で、
// 「アプリパスワード」を生成する必要があります。
//
// =============================================================================
package pipeline

import (
	"fmt"
	"math"
	"net/smtp"
	"os"
	"strings"
	"time"
)

// EmailConfig はメール送信の設定を保持する
type EmailConfig struct {
	From     string   // 送信元メールアドレス
	Password string   // Gmailアプリパスワード
	To       []string // 送信先メールアドレス（複数可）
	SMTPHost string   // SMTPサーバーホスト（"smtp.gmail.com"）
	SMTPPort string   // SMTPポート（"587"）
}

// EmailSender はメール送信を担当する
type EmailSender struct {
	config EmailConfig
}

// NewEmailSender は新しいメール送信者を作成する
//
// 【注意】通常のGmailパスワードは使用できません。
// 必ずアプリパスワードを使用してください。
func NewEmailSender(from, password, to string) (*EmailSender, error) {
	if from == "" {
		return nil, fmt.Errorf("EMAIL_FROM is required")
	}
	if password == "" {
		return nil, fmt.Errorf("EMAIL_PASSWORD is required (use Gmail App Password)")
	}
	if to == "" {
		return nil, fmt.Errorf("EMAIL_TO is required")
	}

	// カンマ区切りのメールアドレスを分割
	toList := strings.Split(to, ",")
	for i, addr := range toList {
		toList[i] = strings.TrimSpace(addr)
	}

	return &EmailSender{
		config: EmailConfig{
			From:     from,
			Password: password,
			To:       toList,
			SMTPHost: "smtp.gmail.com",
			SMTPPort: "587", // TLSポート
		},
	}, nil
}

// =============================================================================
// 公開レポート
// =============================================================================

// SendPublishReport は1回の公開結果をメールで送信する
//
// デフォルトワークシートに落ちた日は件名に[FALLBACK]を付けて、
// モデル側の問題に気づけるようにする。
func (es *EmailSender) SendPublishReport(res *PublishResult, siteURL string) error {
	subject := fmt.Sprintf("[Daily English] %s published: %s", res.Date, res.Title)
	if res.UsedFallback {
		subject = fmt.Sprintf("[Daily English][FALLBACK] %s published with default worksheet", res.Date)
	}

	var sb strings.Builder
	sb.WriteString("Daily English publish report\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", time.Now().Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("Date:     %s\n", res.Date))
	sb.WriteString(fmt.Sprintf("Title:    %s\n", res.Title))
	sb.WriteString(fmt.Sprintf("Headline: %s\n", res.Headline))
	sb.WriteString(fmt.Sprintf("Fallback: %t\n", res.UsedFallback))
	sb.WriteString(fmt.Sprintf("Archive:  %d days\n", res.ArchiveSize))
	if siteURL != "" {
		sb.WriteString(fmt.Sprintf("\nPage: %s/%s\n", strings.TrimRight(siteURL, "/"), DayFileName(res.Date)))
	}

	msg := es.BuildEmailMessage(subject, sb.String())
	return es.SendWithRetry(msg)
}

// =============================================================================
// メールメッセージ構築
// =============================================================================

// BuildEmailMessage はRFC 5322準拠のメールメッセージを構築する
//
// 注意: ヘッダーと本文は空行（\r\n）で区切る
func (es *EmailSender) BuildEmailMessage(subject, body string) []byte {
	var msg strings.Builder

	msg.WriteString(fmt.Sprintf("From: %s\r\n", es.config.From))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(es.config.To, ", ")))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	return []byte(msg.String())
}

// =============================================================================
// 送信（リトライ付き）
// =============================================================================

// SendWithRetry は指数バックオフでリトライしながらメールを送信する
//
// 1回目失敗: 2秒待機、2回目失敗: 4秒待機、3回目失敗: 8秒待機。
// 一時的なネットワーク障害やサーバー過負荷に対応する。
func (es *EmailSender) SendWithRetry(msg []byte) error {
	maxRetries := 3
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		if i > 0 {
			wait := time.Duration(math.Pow(2, float64(i))) * time.Second
			fmt.Fprintf(os.Stderr, "Retrying email send in %v...\n", wait)
			time.Sleep(wait)
		}

		err := es.send(msg)
		if err == nil {
			return nil
		}

		lastErr = err
		warnf("Email send failed (attempt %d/%d): %v", i+1, maxRetries, err)
	}

	return fmt.Errorf("failed to send email after %d retries: %w", maxRetries, lastErr)
}

// send はGmail SMTPを使用してメールを送信する
//
// PLAIN認証を使用。TLS（ポート587）で暗号化される。
func (es *EmailSender) send(msg []byte) error {
	auth := smtp.PlainAuth("", es.config.From, es.config.Password, es.config.SMTPHost)
	addr := es.config.SMTPHost + ":" + es.config.SMTPPort

	err := smtp.SendMail(addr, auth, es.config.From, es.config.To, msg)
	if err != nil {
		return fmt.Errorf("SMTP send failed: %w (check EMAIL_PASSWORD is a Gmail App Password)", err)
	}

	return nil
}
