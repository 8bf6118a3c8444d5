package sourcemap

import "github.com/tliron/commonlog"

var log = commonlog.GetLogger("movec.sourcemap")
