package tetris

// MoveBy は落下中のピースを (dx, dy) だけ動かします。
// 衝突する場合は状態を変えずに false を返します。下方向の移動に失敗した場合の固定は
// 呼び出し側（自動落下とソフトドロップ）が行います。
func (e *Engine) MoveBy(dx, dy int) bool {
	if !e.piece.MoveBy(e.board, dx, dy) {
		return false
	}
	e.notifyBoardChanged()
	return true
}

// Rotate は落下中のピースを時計回りに回転させます。回転できた場合は true を返します。
func (e *Engine) Rotate() bool {
	if !e.piece.Rotate(e.board) {
		return false
	}
	e.notifyBoardChanged()
	return true
}

// Lock は落下中のピースをボードに固定し、揃った行を消去してスコアを加算します。
// 行列の走査順に処理し、ボードより上に残るマスが見つかった時点でゲームオーバーとなり、
// 残りのマスは書き込みません。新しいピースの出現は呼び出し側が行います。
//
// Returns:
//
//	int: 消去した行数（ゲームオーバーの場合は0）
func (e *Engine) Lock() int {
	for _, cell := range e.piece.Cells() {
		x, y := cell[0], cell[1]
		if y < 0 {
			// ボードの上端を越えて積み上がった
			e.gameOver()
			return 0
		}
		e.board.Lock(x, y, e.piece.Color)
	}

	cleared := e.board.ClearFullRows()
	if gained := cleared * e.cfg.ScorePerClearedRow; gained > 0 {
		e.score += gained
		e.listener.OnScoreChanged(e.score)
	}
	e.notifyBoardChanged()
	return cleared
}

// drop はピースを1段落とします。落とせない場合は固定し、ゲームが続いていれば次のピースを出現させます。
func (e *Engine) drop() {
	if e.MoveBy(0, 1) {
		return
	}
	e.Lock()
	if e.state == StateRunning {
		e.SpawnNext()
	}
}

// resetGravity は自動落下タイマーの基準時刻を現在時刻にします。
func (e *Engine) resetGravity() {
	e.dropStart = e.cfg.Clock.Now()
}

// Frame はホストのフレームコールバックごとに1回呼ばれ、時計を1回参照します。
// 前回のリセットからの経過時間が自動落下の間隔を超えていればピースを1段落とし、
// 移動の成否に関わらずタイマーをリセットします。
//
// Returns:
//
//	bool: ゲームが続いている場合はtrue（次のフレームをスケジュールすべきか）
func (e *Engine) Frame() bool {
	if e.state != StateRunning {
		return false
	}
	if e.cfg.Clock.Now().Sub(e.dropStart) > e.cfg.GravityInterval {
		e.drop()
		e.resetGravity()
	}
	return e.state == StateRunning
}

// HandleCommand はプレイヤーの操作を1つ同期的に処理します。
// 左右移動と回転は自動落下タイマーをリセットし、手動操作で次の自動落下が早まらないようにします。
// ソフトドロップは自身が落下を行うため、タイマーをリセットしません。
// 不明な操作とゲームオーバー後の操作は無視します。
func (e *Engine) HandleCommand(cmd Command) {
	if e.state != StateRunning {
		return
	}

	switch cmd {
	case CommandLeft:
		e.MoveBy(-1, 0)
		e.resetGravity()
	case CommandRight:
		e.MoveBy(1, 0)
		e.resetGravity()
	case CommandRotateCW:
		e.Rotate()
		e.resetGravity()
	case CommandSoftDrop:
		e.drop()
	}
}
