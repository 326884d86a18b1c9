package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/trezcool/mentora/core"
	"github.com/trezcool/mentora/core/attendance"
	"github.com/trezcool/mentora/core/mentee"
	"github.com/trezcool/mentora/core/mentor"
	"github.com/trezcool/mentora/core/profile"
	"github.com/trezcool/mentora/core/user"
	"github.com/trezcool/mentora/services/locker"
	logsvc "github.com/trezcool/mentora/services/logger"
	"github.com/trezcool/mentora/storage/database"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	store, err := database.Open(context.Background(), conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}

	// start CLI
	cli := newCommandLine(store)
	err = cli.run(os.Args)
	_ = store.Close(context.Background())
	if err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("\nerror: %s\n", err))
		}
		os.Exit(1)
	}
}

func newCommandLine(store *database.Store) *commandLine {
	usrSvc := user.NewService(store.Users)
	mentorSvc := mentor.NewService(store.Mentors)
	menteeSvc := mentee.NewService(store.Mentees, store.Mentors)
	attendanceSvc := attendance.NewService(store.Attendance, store.Mentees, locker.NewLocalLocker())
	return &commandLine{
		store:    store,
		users:    usrSvc,
		profiles: profile.NewService(usrSvc, store.Admins, mentorSvc, menteeSvc, attendanceSvc),
	}
}
