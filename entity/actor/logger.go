package actor

import "github.com/sirupsen/logrus"

// log 实体池模块的日志记录器
var log = logrus.WithField("module", "actor")
