// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/gptwrap/internal/config"
	"github.com/jeranaias/gptwrap/internal/conversation"
)

// completionMsg carries the outcome of an Execute call back to Update.
type completionMsg struct {
	pending *conversation.Pending
	result  conversation.Result
}

// copiedMsg reports the outcome of a clipboard write.
type copiedMsg struct {
	err error
}

// ConfigReloadedMsg is sent when the config file changed on disk. Only the
// [ui] section is applied to a running view.
type ConfigReloadedMsg struct {
	UI config.UIConfig
}
