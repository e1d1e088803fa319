// Package sequencer содержит конечный автомат выполнения шагов одного view.
//
// Sequencer хранит активный шаг, собранные значения inputs, последний
// результат каждого шага и решает, что делать на очередном тике:
//
//	тик → gating (нет ввода? → IDLE, gateway не вызывается)
//	    → EXECUTING (один вызов gateway, single-flight)
//	    → результат: exit 0 → следующий шаг или петля на 0
//	                 exit ≠ 0 → активный шаг не меняется
//	    → ADVANCED (запланирован follow-up тик) или IDLE
//
// Sequencer не запускает тики сам: Transition.FollowUp сообщает
// вызывающему коду (orchestrator), что нужен ещё один автоматический тик.
package sequencer
