package mail

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignupCode(t *testing.T) {
	msg, err := SignupCode(context.Background(), "member@example.com", "123456")
	require.NoError(t, err)
	require.Equal(t, "member@example.com", msg.To)
	require.Equal(t, "한사랑교회 이메일 인증번호입니다.", msg.Subject)
	require.Contains(t, msg.HTML, "<h2>한사랑교회 이메일 인증번호</h2>")
	require.Contains(t, msg.HTML, ">123456</p>")
	require.Contains(t, msg.Text, "123456")
}

func TestPasswordResetCode_EscapesName(t *testing.T) {
	msg, err := PasswordResetCode(context.Background(), "member@example.com", "<b>홍길동</b>", "654321")
	require.NoError(t, err)
	require.Contains(t, msg.HTML, "안녕하세요, &lt;b&gt;홍길동&lt;/b&gt;님.")
	require.NotContains(t, msg.HTML, "<b>")
	require.Contains(t, msg.HTML, "654321")
}

func TestLogMailer(t *testing.T) {
	var buf bytes.Buffer
	m := LogMailer{Logger: slog.New(slog.NewTextHandler(&buf, nil))}
	require.NoError(t, m.Send(context.Background(), Message{To: "a@b.c", Subject: "s", Text: "code 1"}))
	require.Contains(t, buf.String(), "to=a@b.c")
	require.Contains(t, buf.String(), `text="code 1"`)
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	require.Equal(t, Message{}, r.Last())
	require.NoError(t, r.Send(context.Background(), Message{To: "x"}))
	require.NoError(t, r.Send(context.Background(), Message{To: "y"}))
	require.Len(t, r.Sent, 2)
	require.Equal(t, "y", r.Last().To)
}
