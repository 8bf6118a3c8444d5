package normalize

import "github.com/tliron/commonlog"

var log = commonlog.GetLogger("movec.normalize")
