package output

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToChatFormat_HeadingBecomesBold(t *testing.T) {
	out := ToChatFormat("## Status\nall good", DialectSlackMrkdwn)
	require.Contains(t, out, "*Status*")
	require.NotContains(t, out, "##")
}

func TestToChatFormat_BoldConvertsToSlackStar(t *testing.T) {
	out := ToChatFormat("this is **important**", DialectSlackMrkdwn)
	require.Contains(t, out, "*important*")
	require.NotContains(t, out, "**")
}

func TestToChatFormat_LinkConvertsToSlackAngleForm(t *testing.T) {
	out := ToChatFormat("[docs](https://example.com/docs)", DialectSlackMrkdwn)
	require.Equal(t, "<https://example.com/docs|docs>", out)
}

func TestToChatFormat_LinkConvertsToPlainParenForm(t *testing.T) {
	out := ToChatFormat("[docs](https://example.com/docs)", DialectPlainText)
	require.Equal(t, "docs (https://example.com/docs)", out)
}

func TestToChatFormat_TableBecomesBulletList(t *testing.T) {
	md := "| Name | Status |\n| --- | --- |\n| build | pass |\n| deploy | fail |"
	out := ToChatFormat(md, DialectSlackMrkdwn)
	require.Contains(t, out, "- Name: build, Status: pass")
	require.Contains(t, out, "- Name: deploy, Status: fail")
	require.NotContains(t, out, "|")
}
