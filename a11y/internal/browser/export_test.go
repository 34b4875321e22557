package browser

import "github.com/go-rod/rod/lib/proto"

func Blocks(names []string, t proto.NetworkResourceType) bool { return newBlocklist(names).blocks(t) }
