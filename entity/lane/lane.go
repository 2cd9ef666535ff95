package lane

import (
	"fmt"
	"math"
	"sort"

	"git.fiblab.net/general/common/v2/geometry"
	"git.fiblab.net/general/common/v2/mathutil"
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/crossroad-sim-oss/entity"
	"github.com/tsinghua-fib-lab/crossroad-sim-oss/utils/config"
)

// Lane 车道实体
// 功能：表示路口的一条直线段通行路径，提供s坐标到世界坐标/朝向的换算
// 说明：无内部可变状态，构造后只读
type Lane struct {
	id   int32
	name string
	axis entity.Axis    // 所属通行轴
	typ  mapv2.LaneType // 车道类型
	turn mapv2.LaneTurn // 转向类型

	line           []geometry.Point             // 中心线折线（直线段，两点）
	lineLengths    []float64                    // 中心线折线点对应的长度列表
	lineDirections []geometry.PolylineDirection // 中心线折线段每一段的方向（atan2）
	length         float64                      // 以中心线的长度为车道长度

	// 路口覆盖区在本车道上的投影，世界坐标求解后换算为s阈值
	entryS float64 // 进入覆盖区的s坐标，不相交为INF
	exitS  float64 // 离开覆盖区的s坐标，不相交为INF
}

// newLane 创建并初始化一个新的Lane实例
// 功能：根据车道定义创建Lane对象，解析类型与转向，计算几何属性与覆盖区阈值
// 参数：id-车道ID，base-车道定义，fp-路口覆盖区
// 返回：初始化完成的Lane实例
// 说明：配置非法（轴/类型/转向错误、零长度）直接panic快速失败
func newLane(id int32, base config.LaneDef, fp Footprint) *Lane {
	axis, err := entity.ParseAxis(base.Axis)
	if err != nil {
		log.Panicf("lane %d (%s): %v", id, base.Name, err)
	}
	l := &Lane{
		id:   id,
		name: base.Name,
		axis: axis,
	}
	switch base.Type {
	case "driving":
		l.typ = mapv2.LaneType_LANE_TYPE_DRIVING
	case "walking":
		l.typ = mapv2.LaneType_LANE_TYPE_WALKING
	default:
		log.Panicf("lane %d (%s): bad type %q (must be driving or walking)", id, base.Name, base.Type)
	}
	switch base.Turn {
	case "", "through":
		l.turn = mapv2.LaneTurn_LANE_TURN_STRAIGHT
	case "left":
		l.turn = mapv2.LaneTurn_LANE_TURN_LEFT
	default:
		log.Panicf("lane %d (%s): bad turn %q (must be through or left)", id, base.Name, base.Turn)
	}
	l.line = []geometry.Point{
		{X: base.Start.X, Y: base.Start.Y, Z: base.Start.Z},
		{X: base.End.X, Y: base.End.Y, Z: base.End.Z},
	}
	l.lineLengths = geometry.GetPolylineLengths2D(l.line)
	l.length = l.lineLengths[len(l.lineLengths)-1]
	if l.length <= 0 {
		log.Panicf("lane %d (%s): zero-length center line", id, base.Name)
	}
	l.lineDirections = geometry.GetPolylineDirections(l.line)

	if t0, t1, ok := segmentSquareInterval(l.line[0], l.line[1], fp.Center, fp.HalfWidth); ok {
		l.entryS = t0 * l.length
		l.exitS = t1 * l.length
	} else {
		l.entryS = mathutil.INF
		l.exitS = mathutil.INF
	}
	return l
}

// segmentSquareInterval 计算线段与轴对齐正方形的参数交集
// 功能：求线段a->b位于以c为中心、half为半宽的正方形内的参数区间
// 返回：区间[t0, t1]（相对线段参数，0为起点1为终点）与是否相交
// 算法说明：标准slab法，先把坐标平移到以正方形中心为原点，
// 对x、y两个维度分别求参数区间后取交
func segmentSquareInterval(a, b, c geometry.Point, half float64) (float64, float64, bool) {
	t0, t1 := 0.0, 1.0
	for _, dim := range [2][2]float64{{a.X - c.X, b.X - c.X}, {a.Y - c.Y, b.Y - c.Y}} {
		o, d := dim[0], dim[1]-dim[0]
		if d == 0 {
			if o < -half || o > half {
				return 0, 0, false
			}
			continue
		}
		ta := (-half - o) / d
		tb := (half - o) / d
		if ta > tb {
			ta, tb = tb, ta
		}
		t0 = math.Max(t0, ta)
		t1 = math.Min(t1, tb)
	}
	if t0 > t1 {
		return 0, 0, false
	}
	return t0, t1, true
}

// 静态数据

func (l *Lane) String() string {
	return fmt.Sprintf("Lane %d (%s)", l.id, l.name)
}

// 获取Lane ID
func (l *Lane) ID() int32 {
	if l == nil {
		return -1
	}
	return l.id
}

// 获取Lane名称
func (l *Lane) Name() string {
	return l.name
}

// 获取Lane所属通行轴
func (l *Lane) Axis() entity.Axis {
	return l.axis
}

// 获取Lane类型
func (l *Lane) Type() mapv2.LaneType {
	return l.typ
}

// 获取Lane转向类型
func (l *Lane) Turn() mapv2.LaneTurn {
	return l.turn
}

// 获取Lane长度
func (l *Lane) Length() float64 {
	return l.length
}

// 获取Lane的中心线
func (l *Lane) CenterLine() []geometry.Point {
	return l.line
}

// 检查是否是人行道
func (l *Lane) IsWalkLane() bool {
	return l.typ == mapv2.LaneType_LANE_TYPE_WALKING
}

// FootprintEntryS 获取进入路口覆盖区的s坐标
// 说明：中心线与覆盖区不相交时为INF，此时本车道不受停车线约束
func (l *Lane) FootprintEntryS() float64 {
	return l.entryS
}

// FootprintExitS 获取离开路口覆盖区的s坐标
func (l *Lane) FootprintExitS() float64 {
	return l.exitS
}

// CrossesIntoFootprint 检查从curS推进到candS是否从覆盖区外进入覆盖区
// 功能：停车线判定，当前位置在覆盖区外且候选位置越过进入点时返回true
// 参数：curS-当前s坐标，candS-候选s坐标
// 说明：已在覆盖区内（curS >= entryS）的实体不再受停车线约束
func (l *Lane) CrossesIntoFootprint(curS, candS float64) bool {
	return curS < l.entryS && candS >= l.entryS
}

// GetDirectionByS 根据本车道s坐标计算切向角度
// 功能：查找s所在折线段并返回该段方向
// 说明：s超出范围时夹紧到合法区间
func (l *Lane) GetDirectionByS(s float64) (direction geometry.PolylineDirection) {
	if s < l.lineLengths[0] || s > l.lineLengths[len(l.lineLengths)-1] {
		log.Debugf("get direction with s %v out of range{%v,%v}",
			s, l.lineLengths[0], l.lineLengths[len(l.lineLengths)-1])
		s = lo.Clamp(s, l.lineLengths[0], l.lineLengths[len(l.lineLengths)-1])
	}
	if i := sort.SearchFloat64s(l.lineLengths, s); i == 0 {
		direction = l.lineDirections[0]
	} else {
		direction = l.lineDirections[i-1]
	}
	return
}

// GetPositionByS 将当前车道s坐标转换为xy(z)坐标
// 功能：查找s所在折线段并线性插值得到世界坐标
// 说明：s超出范围时夹紧到合法区间
func (l *Lane) GetPositionByS(s float64) (pos geometry.Point) {
	if s < l.lineLengths[0] || s > l.lineLengths[len(l.lineLengths)-1] {
		log.Debugf("get position with s %v out of range{%v,%v}",
			s, l.lineLengths[0], l.lineLengths[len(l.lineLengths)-1])
		s = lo.Clamp(s, l.lineLengths[0], l.lineLengths[len(l.lineLengths)-1])
	}
	if i := sort.SearchFloat64s(l.lineLengths, s); i == 0 {
		pos = l.line[0]
	} else {
		sHigh, sLow := l.lineLengths[i], l.lineLengths[i-1]
		k := (s - sLow) / (sHigh - sLow)
		pos = geometry.Blend(l.line[i-1], l.line[i], k)
	}
	return
}
