package events

const userChannelPrefix = "channel:user:"

// UserChannelPattern matches every per-user channel.
const UserChannelPattern = userChannelPrefix + "*"

// UserChannel is the pub/sub channel carrying events addressed to username.
func UserChannel(username string) string {
	return userChannelPrefix + username
}
