package lane

import (
	"errors"
	"fmt"
	"math"

	"git.fiblab.net/general/common/v2/geometry"
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/tsinghua-fib-lab/crossroad-sim-oss/utils/config"
)

var (
	// ErrInvalidLaneReference 车道引用越界错误
	// 说明：属于配置错误，由调用方决定快速失败，引擎不做静默夹紧
	ErrInvalidLaneReference = errors.New("invalid lane reference")
)

// Footprint 世界坐标下的方形路口覆盖区
// 功能：描述停车线语义的边界区域，非绿灯轴的实体不得从外部进入
type Footprint struct {
	Center    geometry.Point // 路口中心
	HalfWidth float64        // 覆盖区半宽（米）
}

// Contains 检查点是否位于覆盖区内
// 说明：采用切比雪夫距离（方形边界）判定
func (f Footprint) Contains(p geometry.Point) bool {
	return math.Abs(p.X-f.Center.X) <= f.HalfWidth && math.Abs(p.Y-f.Center.Y) <= f.HalfWidth
}

// CrossedInto 检查从from移动到to是否从覆盖区外进入覆盖区
// 功能：自由行走实体的停车线判定，基于移动线段与方形区域的相交，
// 一步跨越整个覆盖区（两端点都在区外）时同样成立
// 说明：起点已在覆盖区内的实体不再受停车线约束
func (f Footprint) CrossedInto(from, to geometry.Point) bool {
	if f.Contains(from) {
		return false
	}
	_, _, ok := segmentSquareInterval(from, to, f.Center, f.HalfWidth)
	return ok
}

// Manager 车道几何表
// 功能：持有场景中的全部车道，提供ID查找与按类型筛选
// 说明：构造后只读，车道ID为表内下标
type Manager struct {
	lanes     []*Lane
	byType    map[mapv2.LaneType][]*Lane
	footprint Footprint
	worldHalf float64 // 以路口中心为原点的世界半边长（米）
}

// NewManager 创建车道几何表
// 功能：根据场景配置构建全部车道并计算覆盖区阈值
// 参数：s-场景配置（默认值已补全）
// 返回：初始化完成的车道几何表
// 说明：车道表为空或车道定义非法时panic快速失败
func NewManager(s config.Scenario) *Manager {
	if len(s.Lanes) == 0 {
		log.Panic("scenario has no lanes")
	}
	fp := Footprint{
		Center:    geometry.Point{X: s.Footprint.Center.X, Y: s.Footprint.Center.Y, Z: s.Footprint.Center.Z},
		HalfWidth: s.Footprint.HalfWidth,
	}
	m := &Manager{
		lanes:     make([]*Lane, 0, len(s.Lanes)),
		byType:    make(map[mapv2.LaneType][]*Lane),
		footprint: fp,
		worldHalf: s.World.HalfExtent,
	}
	for i, def := range s.Lanes {
		l := newLane(int32(i), def, fp)
		m.lanes = append(m.lanes, l)
		m.byType[l.Type()] = append(m.byType[l.Type()], l)
	}
	return m
}

// Get 根据ID获取Lane实例
// 功能：通过车道ID查找对应的Lane对象，如果不存在则panic
// 说明：供内部持有合法ID的路径使用
func (m *Manager) Get(id int32) *Lane {
	if id < 0 || int(id) >= len(m.lanes) {
		log.Panicf("no id %d in lane data", id)
	}
	return m.lanes[id]
}

// GetOrError 根据ID获取Lane实例（带错误处理）
// 功能：通过车道ID查找对应的Lane对象，越界时返回ErrInvalidLaneReference
// 说明：供外部传入车道提示的路径使用
func (m *Manager) GetOrError(id int32) (*Lane, error) {
	if id < 0 || int(id) >= len(m.lanes) {
		return nil, fmt.Errorf("%w: no lane %d (have %d lanes)", ErrInvalidLaneReference, id, len(m.lanes))
	}
	return m.lanes[id], nil
}

// Lanes 获取全部车道
func (m *Manager) Lanes() []*Lane {
	return m.lanes
}

// Count 获取车道数量
func (m *Manager) Count() int {
	return len(m.lanes)
}

// ByType 按车道类型筛选车道
// 返回：该类型的车道列表，没有时返回nil
func (m *Manager) ByType(typ mapv2.LaneType) []*Lane {
	return m.byType[typ]
}

// Footprint 获取路口覆盖区
func (m *Manager) Footprint() Footprint {
	return m.footprint
}

// WorldHalfExtent 获取世界半边长
func (m *Manager) WorldHalfExtent() float64 {
	return m.worldHalf
}

// WorldContains 检查点是否位于世界范围内
func (m *Manager) WorldContains(p geometry.Point) bool {
	return math.Abs(p.X-m.footprint.Center.X) <= m.worldHalf &&
		math.Abs(p.Y-m.footprint.Center.Y) <= m.worldHalf
}
