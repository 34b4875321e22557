package browser

import (
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// resourceAliases maps config names onto CDP resource types. Plural forms
// are accepted for the common ones.
var resourceAliases = map[string]proto.NetworkResourceType{
	"images":      proto.NetworkResourceTypeImage,
	"fonts":       proto.NetworkResourceTypeFont,
	"stylesheets": proto.NetworkResourceTypeStylesheet,
	"scripts":     proto.NetworkResourceTypeScript,
}

// blocklist is the set of CDP resource types failed at the network layer.
type blocklist map[proto.NetworkResourceType]bool

func newBlocklist(names []string) blocklist {
	bl := make(blocklist, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if t, ok := resourceAliases[n]; ok {
			bl[t] = true
			continue
		}
		// CDP names are capitalised: "media" -> "Media".
		if n != "" {
			bl[proto.NetworkResourceType(strings.ToUpper(n[:1])+n[1:])] = true
		}
	}
	return bl
}

func (bl blocklist) blocks(t proto.NetworkResourceType) bool { return bl[t] }

// hijack fails blocked requests on page and lets the rest through. The
// router is stopped when the page closes.
func (bl blocklist) hijack(page *rod.Page) *rod.HijackRouter {
	router := page.HijackRequests()
	router.MustAdd("*", func(h *rod.Hijack) {
		if bl.blocks(h.Request.Type()) {
			h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		h.ContinueRequest(&proto.FetchContinueRequest{})
	})
	go router.Run()
	return router
}
