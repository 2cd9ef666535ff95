package actor

import (
	"fmt"
	"math"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/tsinghua-fib-lab/crossroad-sim-oss/entity"
	"github.com/tsinghua-fib-lab/crossroad-sim-oss/entity/lane"
	"github.com/tsinghua-fib-lab/crossroad-sim-oss/utils/config"
	"github.com/tsinghua-fib-lab/crossroad-sim-oss/utils/container"
)

// Kind 实体种类
type Kind int32

const (
	KindCar        Kind = iota // 小汽车
	KindTruck                  // 卡车
	KindBicycle                // 自行车
	KindPedestrian             // 行人

	NumKinds = 4
)

func (k Kind) String() string {
	switch k {
	case KindCar:
		return "car"
	case KindTruck:
		return "truck"
	case KindBicycle:
		return "bicycle"
	case KindPedestrian:
		return "pedestrian"
	}
	return "unknown"
}

// IsVehicle 检查是否为机动车
// 说明：机动车到达车道末端后折返到起点（持续车流），非机动实体则离场
func (k Kind) IsVehicle() bool {
	return k == KindCar || k == KindTruck
}

// speedKey 获取种类在速度配置表中的键名
// 参数：freeWalk-是否为自由行走（仅对行人有意义）
func (k Kind) speedKey(freeWalk bool) string {
	if k == KindPedestrian && freeWalk {
		return config.KindPedestrianFree
	}
	return k.String()
}

// NoLane 非车道绑定实体的车道ID哨兵值
const NoLane int32 = -1

// Node 车道二级索引中的节点类型
type Node = container.ListNode[*Actor, struct{}]

// Actor 移动实体
// 功能：实体池中一个槽位的完整运行时状态
// 说明：槽位在池构造时一次性分配，active为false时槽位可复用，
// 此时其余字段无任何保证
type Actor struct {
	id   int32
	kind Kind

	laneID   int32      // 车道ID，NoLane表示非车道绑定（自由行走）
	lane     *lane.Lane // 车道实体缓存（车道绑定时非nil）
	progress float64    // 归一化进度[0,1]（车道绑定时有效）

	position geometry.Point // 世界坐标（缓存，更新后必与几何查表一致）
	heading  float64        // 朝向角度（弧度，atan2）

	speed  float64 // 速度（米/秒，非负，出生时确定）
	active bool

	// 本tick内折返到车道起点的标记，同车道后车据此忽略该前车，
	// 车道遍历结束后由索引重排时清除
	wrapped bool

	// 自由行走实体专用
	axis      entity.Axis    // 关联通行轴，决定停车线放行颜色
	direction geometry.Point // 单位方向向量

	// 仅展示用字段，出生时设置后不再变化
	scale      float64
	colorIndex int32

	node Node // 车道索引节点，嵌入以避免逐实体堆分配
}

func (a *Actor) String() string {
	return fmt.Sprintf("Actor %d (%v)", a.id, a.kind)
}

// ID 获取实体ID
func (a *Actor) ID() int32 {
	return a.id
}

// V 获取实体速度
func (a *Actor) V() float64 {
	return a.speed
}

// LaneBound 检查实体是否绑定车道
func (a *Actor) LaneBound() bool {
	return a.laneID != NoLane
}

// refreshPose 根据(车道, 进度)重算世界坐标与朝向
// 说明：缓存一致性约束，每次提交进度后必须调用
func (a *Actor) refreshPose() {
	s := a.progress * a.lane.Length()
	a.position = a.lane.GetPositionByS(s)
	a.heading = a.lane.GetDirectionByS(s).Direction
}

// Snapshot 实体状态快照
// 功能：供外部读取的不可变副本，渲染端据此摆放模型
type Snapshot struct {
	ID         int32
	Kind       Kind
	LaneID     int32 // NoLane表示自由行走
	Progress   float64
	Position   geometry.Point
	Heading    float64 // 弧度
	Speed      float64
	Scale      float64
	ColorIndex int32
}

// Direction 获取朝向单位向量
// 说明：供渲染端摆放模型朝向使用
func (s Snapshot) Direction() geometry.Point {
	return geometry.Point{X: math.Cos(s.Heading), Y: math.Sin(s.Heading)}
}

// snapshot 生成实体的状态快照
func (a *Actor) snapshot() Snapshot {
	return Snapshot{
		ID:         a.id,
		Kind:       a.kind,
		LaneID:     a.laneID,
		Progress:   a.progress,
		Position:   a.position,
		Heading:    a.heading,
		Speed:      a.speed,
		Scale:      a.scale,
		ColorIndex: a.colorIndex,
	}
}
