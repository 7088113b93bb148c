// Package validator はリクエスト入力のフィールド単位の検証を提供する。
package validator

import (
	"net/mail"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/hitoshi/inspiration/internal/model"
)

// 入力長の上限と下限。上限はテーブル定義の列長に合わせる。
const (
	MaxUsernameLength       = 80
	MaxEmailLength          = 120
	MaxCategoryLength       = 50
	MinDescriptionLength    = 10
	MaxProjectNameLength    = 100
	MaxChatMessageLength    = 2000
	MaxIdeaDescriptionBytes = 10000
	// bcryptが扱えるパスワードの最大バイト数
	MaxPasswordBytes = 72
)

// ValidationErrors はフィールド名とエラーメッセージの対応を保持する。
type ValidationErrors map[string]string

// HasErrors はエラーが1件以上あるかどうかを返す。
func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

// Add はフィールドのエラーメッセージを追加する。
func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

// Error はフィールド名順に連結したメッセージを返す。
func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+v[f])
	}
	return strings.Join(parts, "; ")
}

// ToAPIError は検証エラーをInvalidInputのAPIErrorに変換する。
// messageはクライアントに返す要約、Actionには各フィールドの詳細が入る。
func (v ValidationErrors) ToAPIError(message string) *model.APIError {
	apiErr := model.NewInvalidInputError(message)
	apiErr.Action = v.Error()
	return apiErr
}

// ValidateSignup はサインアップ入力を検証する。
func ValidateSignup(username, email, password string) ValidationErrors {
	errs := make(ValidationErrors)

	username = strings.TrimSpace(username)
	if username == "" {
		errs.Add("username", "Username is required")
	} else if utf8.RuneCountInString(username) > MaxUsernameLength {
		errs.Add("username", "Username is too long")
	}

	email = strings.TrimSpace(email)
	if email == "" {
		errs.Add("email", "Email is required")
	} else if utf8.RuneCountInString(email) > MaxEmailLength {
		errs.Add("email", "Email is too long")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs.Add("email", "Invalid email address")
	}

	if password == "" {
		errs.Add("password", "Password is required")
	} else if len(password) > MaxPasswordBytes {
		errs.Add("password", "Password must be at most 72 bytes")
	}

	return errs
}

// ValidateLogin はログイン入力を検証する。
func ValidateLogin(username, password string) ValidationErrors {
	errs := make(ValidationErrors)

	if strings.TrimSpace(username) == "" {
		errs.Add("username", "Username is required")
	}
	if password == "" {
		errs.Add("password", "Password is required")
	}

	return errs
}

// ValidateIdea は前後の空白を除去したアイデア入力を検証する。
// 説明の長さはUnicodeコードポイント数で数える。
func ValidateIdea(category, description string) ValidationErrors {
	errs := make(ValidationErrors)

	if category == "" {
		errs.Add("category", "Category is required")
	} else if utf8.RuneCountInString(category) > MaxCategoryLength {
		errs.Add("category", "Category is too long")
	}

	if description == "" {
		errs.Add("description", "Description is required")
	} else if utf8.RuneCountInString(description) < MinDescriptionLength {
		errs.Add("description", "Description must be at least 10 characters")
	} else if len(description) > MaxIdeaDescriptionBytes {
		errs.Add("description", "Description is too long")
	}

	return errs
}

// ValidateVote は投票入力を検証する。
// 投票種別は"up"のみ受け付ける。
func ValidateVote(ideaID, voteType string) ValidationErrors {
	errs := make(ValidationErrors)

	if ideaID == "" {
		errs.Add("ideaId", "Idea ID is required")
	}
	if voteType != model.VoteTypeUp {
		errs.Add("voteType", "Vote type must be up")
	}

	return errs
}

// ValidateChatMessage は前後の空白を除去したチャットメッセージを検証する。
func ValidateChatMessage(message string) ValidationErrors {
	errs := make(ValidationErrors)

	if message == "" {
		errs.Add("message", "Message required")
	} else if utf8.RuneCountInString(message) > MaxChatMessageLength {
		errs.Add("message", "Message is too long")
	}

	return errs
}

// ValidateProjectName は前後の空白を除去したプロジェクト名を検証する。
func ValidateProjectName(name string) ValidationErrors {
	errs := make(ValidationErrors)

	if name == "" {
		errs.Add("name", "Project name required")
	} else if utf8.RuneCountInString(name) > MaxProjectNameLength {
		errs.Add("name", "Project name is too long")
	}

	return errs
}
