package signal

import (
	"github.com/tsinghua-fib-lab/crossroad-sim-oss/entity"
)

// PedestrianPhase 行人信号相位
type PedestrianPhase int32

const (
	PedestrianWalk  PedestrianPhase = iota // 通行
	PedestrianFlash                        // 闪烁预警，即将切换
	PedestrianStop                         // 禁止通行
)

func (p PedestrianPhase) String() string {
	switch p {
	case PedestrianWalk:
		return "walk"
	case PedestrianFlash:
		return "flash"
	case PedestrianStop:
		return "stop"
	}
	return "unknown"
}

// PedestrianPhaseFor 派生人行横道信号
// 功能：根据同轴直行灯头颜色与剩余时间派生行人信号相位
// 参数：crossing-人行横道平行的通行轴（与该轴车流同放行）
// 算法说明：
// 1. 绿灯且剩余时间大于闪烁窗口：通行
// 2. 绿灯尾段（剩余时间不超过闪烁窗口）或黄灯：闪烁预警
// 3. 其余（红灯、熄灭、人工覆盖为非绿）：禁止通行
// 说明：人工覆盖期间不派生闪烁，覆盖为绿时恒为通行
func (c *Controller) PedestrianPhaseFor(crossing entity.Axis) PedestrianPhase {
	switch c.PhaseFor(crossing) {
	case ColorGreen:
		if c.forced == nil && c.flashTime > 0 && c.snapshot.remainingT <= c.flashTime {
			return PedestrianFlash
		}
		return PedestrianWalk
	case ColorYellow:
		if c.forced != nil {
			return PedestrianStop
		}
		return PedestrianFlash
	}
	return PedestrianStop
}
