package entity

import "fmt"

// Axis 交叉口的通行轴，南北向与东西向两条垂直车流交替获得路权
type Axis int32

const (
	AxisNS Axis = 0 // 南北向
	AxisEW Axis = 1 // 东西向

	NumAxes = 2 // 轴数量
)

// String 获取轴的字符串表示
func (a Axis) String() string {
	switch a {
	case AxisNS:
		return "NS"
	case AxisEW:
		return "EW"
	}
	return fmt.Sprintf("Axis(%d)", int32(a))
}

// Other 获取与本轴垂直的另一条轴
func (a Axis) Other() Axis {
	if a == AxisNS {
		return AxisEW
	}
	return AxisNS
}

// ParseAxis 将配置文件中的轴名称解析为Axis
// 功能：支持大小写不敏感的ns/NS与ew/EW写法
// 返回：解析得到的轴与可能的错误
func ParseAxis(s string) (Axis, error) {
	switch s {
	case "ns", "NS":
		return AxisNS, nil
	case "ew", "EW":
		return AxisEW, nil
	}
	return 0, fmt.Errorf("bad axis %q (must be ns or ew)", s)
}
