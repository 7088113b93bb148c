// Package model はドメインモデルを定義する。
package model

import "time"

// Chat はチャットメッセージを表す。
type Chat struct {
	ID        string
	UserID    string
	Username  string
	Message   string
	CreatedAt time.Time
}

// Project はユーザーが作成したプロジェクトを表す。
type Project struct {
	ID        string
	UserID    string
	Name      string
	CreatedAt time.Time
}

// Activity はアクティビティフィードの1エントリを表す。
// Username は一覧取得時にJOINで補完される。
type Activity struct {
	ID          string
	UserID      string
	Username    string
	Description string
	CreatedAt   time.Time
}
