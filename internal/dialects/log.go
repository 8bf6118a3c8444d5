package dialects

import "github.com/tliron/commonlog"

var log = commonlog.GetLogger("movec.dialects")
