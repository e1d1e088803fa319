// Package worker выполняет shell-команды дашборда.
//
// # Обзор
//
// Worker — stateless исполнитель команд. Получает запросы command.execute
// из RabbitMQ, находит команду по slug в определении дашборда, запускает её
// через /bin/sh и отправляет результат в reply-очередь запрашивающего.
//
// Workers масштабируются горизонтально: несколько экземпляров
// потребляют из одной очереди commands.execute.
//
// # Ключевые компоненты
//
// ## ShellExecutor
//
// Запускает строку команды через `/bin/sh -c`. Inputs добавляются
// в окружение процесса как NAME=VALUE.
//
//	shell := &worker.ShellExecutor{Timeout: 30 * time.Second}
//	result, err := shell.Run(ctx, "df -h $MOUNT", inputs)
//
// Ненулевой exit code — это результат, а не ошибка. Ошибкой считаются
// только сбой запуска и таймаут.
//
// ## CommandExecutor
//
// Связывает slug команды с её строкой и ShellExecutor'ом.
// Используется Worker'ом, HTTP API и gateway.Local.
//
// ## Worker
//
//	w := worker.New(worker.Config{
//	    Executor:  executor,
//	    Publisher: publisher,
//	    Conn:      mqConn,
//	    Logger:    logger,
//	})
//
//	if err := w.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Stop()
//
// # Обработка запроса
//
//  1. Получение command.execute из commands.execute
//  2. Некорректный payload или запрос без ReplyTo → reject (DLQ)
//  3. Выполнение через Executor
//  4. Ответ command.result в ReplyTo с исходным CorrelationId
//
// Неизвестная команда и ошибка запуска возвращаются запрашивающему
// в ResultPayload.Error, повторная доставка для них не нужна.
package worker
