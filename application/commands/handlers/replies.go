package handlers

import "plotbot/domain/plot"

// Reply texts shown to chat users, one per failure kind.
const (
	MessageMalformedCommand    = "入力が正しくないよ!!\n[<xの開始値>:<xの終了値>]\n<関数名>(x)\nの形で入力してください。"
	MessageInvalidRange        = "範囲指定が正しくないよ!!"
	MessageUnsupportedFunction = "その関数は描画できません。"
)

// ReplyMessage returns the user-facing text for a failure kind.
func ReplyMessage(kind plot.FailureKind) string {
	switch kind {
	case plot.KindMalformedCommand:
		return MessageMalformedCommand
	case plot.KindInvalidRange:
		return MessageInvalidRange
	default:
		return MessageUnsupportedFunction
	}
}
