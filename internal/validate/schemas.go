package validate

// 操作ごとの宣言的スキーマ定義。
// サインアップはロールごとに要求フィールドが異なる。

func floatPtr(f float64) *float64 { return &f }

// WorkerSignup はワーカー登録のスキーマ。
var WorkerSignup = Schema{
	"name":       {Kind: KindString, Required: true, MinLen: 2, MaxLen: 100},
	"email":      {Kind: KindEmail, Required: true},
	"password":   {Kind: KindString, Required: true, MinLen: 8, MaxLen: 72},
	"phone":      {Kind: KindString, MaxLen: 20},
	"location":   {Kind: KindString, MaxLen: 200},
	"skills":     {Kind: KindStringSlice},
	"experience": {Kind: KindString, MaxLen: 2000},
}

// StartupSignup はスタートアップ登録のスキーマ。
var StartupSignup = Schema{
	"companyName": {Kind: KindString, Required: true, MinLen: 2, MaxLen: 100},
	"email":       {Kind: KindEmail, Required: true},
	"password":    {Kind: KindString, Required: true, MinLen: 8, MaxLen: 72},
	"phone":       {Kind: KindString, MaxLen: 20},
	"location":    {Kind: KindString, MaxLen: 200},
	"sector":      {Kind: KindString, MaxLen: 100},
	"description": {Kind: KindString, MaxLen: 5000},
}

// ManufacturerSignup はメーカー登録のスキーマ。
var ManufacturerSignup = Schema{
	"companyName": {Kind: KindString, Required: true, MinLen: 2, MaxLen: 100},
	"email":       {Kind: KindEmail, Required: true},
	"password":    {Kind: KindString, Required: true, MinLen: 8, MaxLen: 72},
	"phone":       {Kind: KindString, MaxLen: 20},
	"location":    {Kind: KindString, MaxLen: 200},
	"sector":      {Kind: KindString, MaxLen: 100},
	"description": {Kind: KindString, MaxLen: 5000},
}

// Signin は全ロール共通のサインインスキーマ。
var Signin = Schema{
	"email":    {Kind: KindEmail, Required: true},
	"password": {Kind: KindString, Required: true},
}

// WorkerProfileUpdate はワーカーのプロフィール更新スキーマ。
// 全フィールド任意（指定されたものだけ更新する）。
var WorkerProfileUpdate = Schema{
	"name":       {Kind: KindString, MinLen: 2, MaxLen: 100},
	"phone":      {Kind: KindString, MaxLen: 20},
	"location":   {Kind: KindString, MaxLen: 200},
	"skills":     {Kind: KindStringSlice},
	"experience": {Kind: KindString, MaxLen: 2000},
}

// CompanyProfileUpdate はスタートアップ・メーカー共通のプロフィール更新スキーマ。
var CompanyProfileUpdate = Schema{
	"companyName": {Kind: KindString, MinLen: 2, MaxLen: 100},
	"phone":       {Kind: KindString, MaxLen: 20},
	"location":    {Kind: KindString, MaxLen: 200},
	"sector":      {Kind: KindString, MaxLen: 100},
	"description": {Kind: KindString, MaxLen: 5000},
}

// GigCreate はギグ作成のスキーマ。
var GigCreate = Schema{
	"title":       {Kind: KindString, Required: true, MinLen: 3, MaxLen: 200},
	"description": {Kind: KindString, MaxLen: 10000},
	"skills":      {Kind: KindStringSlice},
	"location":    {Kind: KindString, MaxLen: 200},
	"salaryMin":   {Kind: KindNumber, Min: floatPtr(0)},
	"salaryMax":   {Kind: KindNumber, Min: floatPtr(0)},
}

// GigUpdate はギグ更新のスキーマ。全フィールド任意。
var GigUpdate = Schema{
	"title":       {Kind: KindString, MinLen: 3, MaxLen: 200},
	"description": {Kind: KindString, MaxLen: 10000},
	"skills":      {Kind: KindStringSlice},
	"location":    {Kind: KindString, MaxLen: 200},
	"salaryMin":   {Kind: KindNumber, Min: floatPtr(0)},
	"salaryMax":   {Kind: KindNumber, Min: floatPtr(0)},
}

// MachineCreate は機材作成のスキーマ。
var MachineCreate = Schema{
	"name":        {Kind: KindString, Required: true, MinLen: 2, MaxLen: 200},
	"type":        {Kind: KindString, MaxLen: 100},
	"description": {Kind: KindString, MaxLen: 10000},
	"location":    {Kind: KindString, MaxLen: 200},
	"dailyRate":   {Kind: KindNumber, Min: floatPtr(0)},
	"available":   {Kind: KindBool},
}

// MachineUpdate は機材更新のスキーマ。全フィールド任意。
var MachineUpdate = Schema{
	"name":        {Kind: KindString, MinLen: 2, MaxLen: 200},
	"type":        {Kind: KindString, MaxLen: 100},
	"description": {Kind: KindString, MaxLen: 10000},
	"location":    {Kind: KindString, MaxLen: 200},
	"dailyRate":   {Kind: KindNumber, Min: floatPtr(0)},
	"available":   {Kind: KindBool},
}

// ApplicationCreate は応募・申請作成のスキーマ。
var ApplicationCreate = Schema{
	"message": {Kind: KindString, MaxLen: 2000},
}

// ApplicationDecision は応募の承認・却下のスキーマ。
var ApplicationDecision = Schema{
	"status": {Kind: KindEnum, Required: true, Enum: []string{"approved", "rejected"}},
}
