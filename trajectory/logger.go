package trajectory

import "github.com/sirupsen/logrus"

// log 轨迹模块的日志记录器
var log = logrus.WithField("module", "trajectory")
