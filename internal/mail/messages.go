package mail

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.977 generate

import (
	"context"
	"fmt"
)

// SignupCode builds the mail carrying an email verification code.
func SignupCode(ctx context.Context, to, code string) (Message, error) {
	html, err := render(ctx, codeMail(
		"한사랑교회 이메일 인증번호",
		"",
		"요청하신 이메일 인증번호는 다음과 같습니다.",
		code,
	))
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		Subject: "한사랑교회 이메일 인증번호입니다.",
		Text:    fmt.Sprintf("이메일 인증번호: %s\n5분 이내에 인증번호를 입력해 주세요.", code),
		HTML:    html,
	}, nil
}

// PasswordResetCode builds the mail carrying a password recovery code.
func PasswordResetCode(ctx context.Context, to, name, code string) (Message, error) {
	html, err := render(ctx, codeMail(
		"한사랑교회 비밀번호 재설정 인증번호",
		fmt.Sprintf("안녕하세요, %s님.", name),
		"요청하신 비밀번호 재설정 인증번호는 다음과 같습니다.",
		code,
	))
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		Subject: "한사랑교회 비밀번호 재설정 인증번호입니다.",
		Text:    fmt.Sprintf("비밀번호 재설정 인증번호: %s\n5분 이내에 인증번호를 입력해 주세요.", code),
		HTML:    html,
	}, nil
}
