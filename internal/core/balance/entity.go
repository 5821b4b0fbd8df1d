package balance

// Balance は (社員, 休暇区分, 年度) ごとの休暇残高です。
type Balance struct {
	EmployeeID string
	Category   string
	Year       int
	Allocated  int
	Used       int
}

// Remaining は Allocated - Used を返します。超過消化時は負の値になります。
func (b Balance) Remaining() int {
	return b.Allocated - b.Used
}

// View は照会結果の 1 区分分です。
type View struct {
	Category  string
	Year      int
	Allocated int
	Used      int
	Remaining int
}
