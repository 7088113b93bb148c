// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// Coins と IdeasSubmitted はアイデア投稿と投票によってのみ更新される。
type User struct {
	ID             string
	Username       string
	Email          string
	PasswordHash   string
	Coins          int
	IdeasSubmitted int
	CreatedAt      time.Time
}

// Session はユーザーのログインセッションを表す。
// Username はusersテーブルとJOINして取得される。
type Session struct {
	ID        string
	UserID    string
	Username  string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Actor はセッションから解決された認証済みユーザーを表す。
// ミドルウェアで生成され、各サービス操作に引数として明示的に渡される。
type Actor struct {
	UserID   string
	Username string
}

// ActorFromSession はセッションからActorを生成する。
func ActorFromSession(s *Session) *Actor {
	if s == nil {
		return nil
	}
	return &Actor{UserID: s.UserID, Username: s.Username}
}

// IsAuthenticated はActorが有効な認証済みユーザーかどうかを返す。
func (a *Actor) IsAuthenticated() bool {
	return a != nil && a.UserID != ""
}
