package config

// Vehicle 车辆几何与运动学限制配置
// 功能：定义自行车模型车辆的外形尺寸与执行器包络
// 说明：外形尺寸（长、宽、后悬）仅供规划与可视化协作方使用，控制器只消费轴距与执行器限制
type Vehicle struct {
	Wheelbase       float64 `yaml:"wheelbase"`                  // 轴距（米）
	Length          float64 `yaml:"length,omitempty"`           // 车长（米）
	Width           float64 `yaml:"width,omitempty"`            // 车宽（米）
	RearOverhang    float64 `yaml:"rear_overhang,omitempty"`    // 后悬长度（米）
	InflationRadius float64 `yaml:"inflation_radius,omitempty"` // 碰撞膨胀半径（米）
	MaxSpeed        float64 `yaml:"max_speed"`                  // 最大速度（米/秒）
	MinSpeed        float64 `yaml:"min_speed"`                  // 最小速度（米/秒，负值允许倒车）
	MaxSteer        float64 `yaml:"max_steer"`                  // 最大前轮转角（弧度）
	MaxAccel        float64 `yaml:"max_accel"`                  // 最大加速度（米/秒²）
	MaxDecel        float64 `yaml:"max_decel"`                  // 最大减速度（米/秒²，正值）
	MaxLatAccel     float64 `yaml:"max_lat_accel"`              // 最大侧向加速度（米/秒²）
}

// Trajectory 轨迹生成配置
// 功能：定义路径点预处理与速度规划的参数
type Trajectory struct {
	MinWaypointDistance float64 `yaml:"min_waypoint_distance"` // 路径点去重最小间距（米）
	MaxCurvature        float64 `yaml:"max_curvature"`         // 平滑目标曲率上限（1/米，软约束）
}

// Controller 控制器配置
// 功能：定义四种控制器共用与专有的增益、权重与限制
// 说明：所有参数在构造控制器时按值拷贝，运行期不再修改
type Controller struct {
	Type string `yaml:"type"` // 控制器类型（hybrid purepursuit mpc stanley）

	K1 float64 `yaml:"k1,omitempty"` // 纵向误差增益
	K2 float64 `yaml:"k2,omitempty"` // 航向误差增益
	K3 float64 `yaml:"k3,omitempty"` // 横向误差增益

	// MPC
	Horizon int     `yaml:"horizon,omitempty"` // 预测时域长度
	QLat    float64 `yaml:"q_lat,omitempty"`   // 横向误差权重
	QLong   float64 `yaml:"q_long,omitempty"`  // 纵向误差权重
	QTheta  float64 `yaml:"q_theta,omitempty"` // 航向误差权重
	RV      float64 `yaml:"r_v,omitempty"`     // 速度增量权重
	RPhi    float64 `yaml:"r_phi,omitempty"`   // 转角增量权重

	// Pure Pursuit
	LookaheadBase     float64 `yaml:"lookahead_base,omitempty"`      // 基础前视距离（米）
	LookaheadTimeGain float64 `yaml:"lookahead_time_gain,omitempty"` // 前视距离的速度增益（秒）
	LookaheadMin      float64 `yaml:"lookahead_min,omitempty"`       // 前视距离下限（米）
	LookaheadMax      float64 `yaml:"lookahead_max,omitempty"`       // 前视距离上限（米）
}

// ControlStep 指定控制循环时间范围和间隔的配置项
// 功能：定义控制循环的固定周期与可选的步数上限
type ControlStep struct {
	Total    int32   `yaml:"total,omitempty"` // 最大步数（0表示由轨迹时长决定）
	Interval float64 `yaml:"interval"`        // 每步的时间间隔（秒）
}

// Control 控制循环配置
type Control struct {
	Step ControlStep `yaml:"step"`
}

// Pose 平面位姿
type Pose struct {
	X     float64 `yaml:"x"`     // 位置x（米）
	Y     float64 `yaml:"y"`     // 位置y（米）
	Theta float64 `yaml:"theta"` // 航向角（弧度）
}

// Scenario 泊车场景配置
// 功能：定义一次泊车机动的参考路径来源与闭环仿真参数
// 说明：waypoints来自外部规划器的输出，本模块不检查其无碰撞性
type Scenario struct {
	Waypoints []Pose  `yaml:"waypoints"`           // 规划器输出的参考路径点序列
	Start     *Pose   `yaml:"start,omitempty"`     // 车辆初始位姿（默认取第一个路径点）
	NoiseStd  float64 `yaml:"noise_std,omitempty"` // 执行器速度噪声标准差（0表示关闭）
	Seed      uint64  `yaml:"seed,omitempty"`      // 随机种子
	HoldTime  float64 `yaml:"hold_time,omitempty"` // 轨迹结束后的保持时间（秒）
	Output    string  `yaml:"output,omitempty"`    // 运行记录CSV输出路径（空表示不输出）
}

// Config YAML配置文件的根结构
type Config struct {
	Vehicle    Vehicle    `yaml:"vehicle"`    // 车辆参数
	Trajectory Trajectory `yaml:"trajectory"` // 轨迹生成参数
	Controller Controller `yaml:"controller"` // 控制器参数
	Control    Control    `yaml:"control"`    // 控制循环参数
	Scenario   Scenario   `yaml:"scenario"`   // 场景参数
}
