// Package model はドメインモデルを定義する。
package model

import "time"

// VoteTypeUp は受け付ける唯一の投票種別。
const VoteTypeUp = "up"

// Idea はユーザーが投稿したアイデアを表す。
// 所有者(UserID)は作成後に変更されず、Votesは増加のみ。
type Idea struct {
	ID          string
	UserID      string
	Category    string
	Description string
	Votes       int
	CreatedAt   time.Time
}

// IdeaWithOwner はアイデアと投稿者のユーザー名を結合したモデル。
// 一覧取得時にusersテーブルとJOINして取得される。
type IdeaWithOwner struct {
	Idea
	Username string
}

// SubmitResult はアイデア投稿トランザクションの結果。
type SubmitResult struct {
	Idea           *Idea
	IdeasSubmitted int
	Coins          int
}

// VoteResult は投票トランザクションの結果。
type VoteResult struct {
	IdeaID     string
	OwnerID    string
	Votes      int
	OwnerCoins int
	// Rewarded は投票者と所有者が異なり、所有者にコインが付与されたことを示す。
	Rewarded bool
}
