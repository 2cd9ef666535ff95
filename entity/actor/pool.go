package actor

import (
	"errors"
	"fmt"
	"math"

	"git.fiblab.net/general/common/v2/geometry"
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/crossroad-sim-oss/entity"
	"github.com/tsinghua-fib-lab/crossroad-sim-oss/entity/lane"
	"github.com/tsinghua-fib-lab/crossroad-sim-oss/utils/config"
	"github.com/tsinghua-fib-lab/crossroad-sim-oss/utils/container"
	"github.com/tsinghua-fib-lab/crossroad-sim-oss/utils/randengine"
)

var (
	// ErrPoolExhausted 实体池耗尽错误
	// 说明：可恢复错误，调用方可在后续tick重试
	ErrPoolExhausted = errors.New("actor pool exhausted")
	// ErrLaneFull 车道无可出生空位错误
	// 说明：可恢复错误，车道上的实体离场或前移后可重试
	ErrLaneFull = errors.New("lane has no admissible spawn gap")
)

// 展示用颜色数量，colorIndex在[0, NumColors)内随机
const NumColors = 8

// SpawnOptions 出生选项
// 说明：所有字段均可选，nil/零值表示采用默认策略
type SpawnOptions struct {
	LaneID *int32 // 指定车道ID，越界时Spawn返回ErrInvalidLaneReference
	// 指定初始进度，与在场实体间距不足时移到最近的可行点；
	// 默认在满足最小间距的区间内均匀随机以避免扎堆
	Progress *float64
	Speed    *float64 // 指定速度，默认为种类标称速度加乘性扰动
	FreeWalk bool     // 自由行走（仅对行人有效），不绑定车道
}

// Pool 实体池
// 功能：固定容量的实体槽位集合，负责出生、离场、逐tick运动更新，
// 并对外暴露在场实体快照
// 说明：容量在构造时固定，不动态扩张；单写者，无内部并发
type Pool struct {
	lanes *lane.Manager
	rand  *randengine.Engine

	minSpacing float64 // 同车道相邻实体最小进度间隔
	speeds     map[string]config.KindSpeed

	slots   []Actor         // 槽位数组，一次性分配
	free    []int32         // 空闲槽位栈
	actives map[int32]int32 // 在场实体ID -> 槽位下标
	nextID  int32

	// 车道ID -> 该车道上按(进度, ID)有序的实体索引
	// 说明：自由行走实体不入索引，更新时按槽位顺序扫描
	laneIndex map[int32]*container.List[*Actor, struct{}]
}

// NewPool 创建实体池
// 功能：按引擎配置一次性分配全部槽位并建立车道二级索引
// 参数：lanes-车道几何表，e-引擎配置（默认值已补全），rand-随机数引擎
// 返回：初始化完成的实体池
func NewPool(lanes *lane.Manager, e config.Engine, rand *randengine.Engine) *Pool {
	p := &Pool{
		lanes:      lanes,
		rand:       rand,
		minSpacing: e.MinSpacing,
		speeds:     e.Speeds,
		slots:      make([]Actor, e.Capacity),
		free:       make([]int32, 0, e.Capacity),
		actives:    make(map[int32]int32),
		laneIndex:  make(map[int32]*container.List[*Actor, struct{}]),
	}
	for i := e.Capacity - 1; i >= 0; i-- {
		p.free = append(p.free, int32(i))
	}
	for _, l := range lanes.Lanes() {
		p.laneIndex[l.ID()] = &container.List[*Actor, struct{}]{
			ID: fmt.Sprintf("lane %d actors", l.ID()),
		}
	}
	return p
}

// Capacity 获取实体池容量
func (p *Pool) Capacity() int {
	return len(p.slots)
}

// ActiveCount 获取在场实体数量
func (p *Pool) ActiveCount() int {
	return len(p.actives)
}

// laneTypeFor 获取种类可通行的车道类型
func laneTypeFor(kind Kind) mapv2.LaneType {
	if kind == KindPedestrian {
		return mapv2.LaneType_LANE_TYPE_WALKING
	}
	return mapv2.LaneType_LANE_TYPE_DRIVING
}

// resolveLane 解析出生车道
// 功能：校验车道提示或在种类可通行的车道中均匀随机选择
// 返回：车道实体与可能的错误（提示越界或类型不符）
func (p *Pool) resolveLane(kind Kind, hint *int32) (*lane.Lane, error) {
	if hint != nil {
		l, err := p.lanes.GetOrError(*hint)
		if err != nil {
			return nil, err
		}
		if l.Type() != laneTypeFor(kind) {
			return nil, fmt.Errorf("%w: lane %d type %v not usable by %v",
				lane.ErrInvalidLaneReference, *hint, l.Type(), kind)
		}
		return l, nil
	}
	candidates := p.lanes.ByType(laneTypeFor(kind))
	if len(candidates) == 0 {
		log.Panicf("no lane usable by kind %v in scenario", kind)
	}
	return candidates[p.rand.Intn(len(candidates))], nil
}

// spawnGaps 计算车道上与在场实体保持最小间距的可出生进度区间
// 返回：升序的闭区间列表，区间内任意进度均满足间距约束
func (p *Pool) spawnGaps(laneID int32) [][2]float64 {
	var gaps [][2]float64
	low := 0.0
	for node := p.laneIndex[laneID].First(); node != nil; node = node.Next() {
		if hi := node.Value.progress - p.minSpacing; hi >= low {
			gaps = append(gaps, [2]float64{low, hi})
		}
		low = node.Value.progress + p.minSpacing
	}
	if low <= 1 {
		gaps = append(gaps, [2]float64{low, 1})
	}
	return gaps
}

// placeOnLane 选取车道绑定实体的初始进度
// 功能：指定进度被移到最近的可行点，未指定时在可行区间并集内
// 按长度均匀随机
// 返回：初始进度，车道无可行区间时返回ErrLaneFull
// 说明：更新阶段的间距约束不会回退实体，间距必须在出生时就成立
func (p *Pool) placeOnLane(l *lane.Lane, hint *float64) (float64, error) {
	gaps := p.spawnGaps(l.ID())
	if len(gaps) == 0 {
		return 0, fmt.Errorf("%w: lane %d", ErrLaneFull, l.ID())
	}
	if hint != nil {
		want := lo.Clamp(*hint, 0, 1)
		best, bestDist := 0.0, math.Inf(1)
		for _, g := range gaps {
			v := lo.Clamp(want, g[0], g[1])
			if d := math.Abs(v - want); d < bestDist {
				best, bestDist = v, d
			}
		}
		return best, nil
	}
	total := 0.0
	for _, g := range gaps {
		total += g[1] - g[0]
	}
	u := p.rand.Float64() * total
	for _, g := range gaps {
		w := g[1] - g[0]
		if u <= w {
			return g[0] + u, nil
		}
		u -= w
	}
	return gaps[len(gaps)-1][1], nil
}

// Spawn 实体出生
// 功能：占用一个空闲槽位，分配新ID并初始化全部运行时状态
// 参数：kind-实体种类，opts-出生选项
// 返回：新实体ID，池耗尽时返回ErrPoolExhausted，车道提示非法时返回
// ErrInvalidLaneReference，车道无满足最小间距的空位时返回ErrLaneFull
// （均不中断引擎）
// 算法说明：
// 1. 无空闲槽位则失败
// 2. 解析车道（提示或随机），在满足最小间距的区间内选取初始进度
// 3. 速度取指定值或标称速度加乘性扰动，展示字段随机化
// 4. 车道绑定实体插入车道有序索引，自由行走实体随机化方向与位置
// 5. 重算世界坐标与朝向，保证缓存一致性
func (p *Pool) Spawn(kind Kind, opts SpawnOptions) (int32, error) {
	if len(p.free) == 0 {
		return -1, ErrPoolExhausted
	}
	freeWalk := kind == KindPedestrian && opts.FreeWalk

	var l *lane.Lane
	var progress float64
	if !freeWalk {
		var err error
		if l, err = p.resolveLane(kind, opts.LaneID); err != nil {
			return -1, err
		}
		if progress, err = p.placeOnLane(l, opts.Progress); err != nil {
			return -1, err
		}
	}

	slot := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	id := p.nextID
	p.nextID++

	a := &p.slots[slot]
	*a = Actor{
		id:         id,
		kind:       kind,
		laneID:     NoLane,
		active:     true,
		scale:      p.rand.JitterPct(1.0, 0.1),
		colorIndex: p.rand.Int31n(NumColors),
	}
	speed := p.speeds[kind.speedKey(freeWalk)]
	if opts.Speed != nil {
		a.speed = math.Max(0, *opts.Speed)
	} else {
		a.speed = p.rand.JitterPct(speed.Nominal, speed.Jitter)
	}

	if freeWalk {
		// 自由行走：随机四向之一，出生位置在世界范围内均匀随机
		theta := float64(p.rand.Int31n(4)) * math.Pi / 2
		a.direction = geometry.Point{X: math.Round(math.Cos(theta)), Y: math.Round(math.Sin(theta))}
		a.axis = entity.AxisEW
		if a.direction.Y != 0 {
			a.axis = entity.AxisNS
		}
		a.heading = math.Atan2(a.direction.Y, a.direction.X)
		half := p.lanes.WorldHalfExtent()
		center := p.lanes.Footprint().Center
		a.position = geometry.Point{
			X: center.X + p.rand.UniformRange(-half, half),
			Y: center.Y + p.rand.UniformRange(-half, half),
		}
	} else {
		a.laneID = l.ID()
		a.lane = l
		a.axis = l.Axis()
		a.progress = progress
		a.node = Node{S: a.progress, Value: a}
		p.laneIndex[l.ID()].Insert(&a.node)
		a.refreshPose()
	}

	p.actives[id] = slot
	return id, nil
}

// Despawn 实体离场
// 功能：将实体标记为不在场并回收槽位
// 参数：id-实体ID
// 说明：ID不在场时为空操作，不报错
func (p *Pool) Despawn(id int32) {
	slot, ok := p.actives[id]
	if !ok {
		return
	}
	p.release(slot)
}

// release 回收槽位
// 说明：从车道索引中摘除并压回空闲栈
func (p *Pool) release(slot int32) {
	a := &p.slots[slot]
	if a.LaneBound() {
		p.laneIndex[a.laneID].Remove(&a.node)
	}
	delete(p.actives, a.id)
	a.active = false
	a.progress = 0
	a.speed = 0
	p.free = append(p.free, slot)
}

// Reset 重置实体池
// 功能：全部实体离场，进度与速度归零，容量不变
// 说明：用于密度/构成参数变化后由调用方重新铺设场景
func (p *Pool) Reset() {
	for i := range p.slots {
		a := &p.slots[i]
		if !a.active {
			continue
		}
		p.release(int32(i))
	}
}

// ActiveActors 获取在场实体快照
// 功能：按槽位顺序返回全部在场实体的只读副本
// 说明：幂等，两次Update之间任意多次调用结果相同；
// 外部不可能通过快照改写池内状态
func (p *Pool) ActiveActors() []Snapshot {
	out := make([]Snapshot, 0, len(p.actives))
	for i := range p.slots {
		if p.slots[i].active {
			out = append(out, p.slots[i].snapshot())
		}
	}
	return out
}
